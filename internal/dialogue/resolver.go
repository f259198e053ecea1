package dialogue

import (
	"strings"

	"vaspx-assistant/internal/metrics"
)

// Replier answers free text that is not a node key.
type Replier interface {
	Reply(text string) string
}

// Resolver maps a client token to the next node. It holds no session state;
// the token is the whole input.
type Resolver struct {
	tree         Tree
	replier      Replier
	supportEmail string
}

// NewResolver creates a resolver over tree. replier answers free text.
func NewResolver(tree Tree, replier Replier, supportEmail string) *Resolver {
	return &Resolver{tree: tree, replier: replier, supportEmail: supportEmail}
}

// Resolve never fails: an empty token or "start" yields the root node, a
// known key yields that node, anything else is answered by the Replier.
func (r *Resolver) Resolve(token string) Node {
	if strings.TrimSpace(token) == "" || token == StartKey {
		metrics.DialogueResolutions.WithLabelValues("root").Inc()
		return r.tree[StartKey].clone()
	}
	if n, ok := r.tree[token]; ok {
		metrics.DialogueResolutions.WithLabelValues("node").Inc()
		return n.clone()
	}
	metrics.DialogueResolutions.WithLabelValues("free_text").Inc()
	return r.freeTextNode(r.replier.Reply(token))
}

func (r *Resolver) freeTextNode(reply string) Node {
	return Node{
		Message: reply,
		Options: []Option{
			Goto("Ask another question", AskQuestionKey),
			Link("Contact support", mailto(r.supportEmail)),
			Goto("Go back to main menu", StartKey),
		},
		ShowGoBack: true,
	}
}
