package dialogue

// Node keys.
const (
	StartKey             = "start"
	NeedSupportKey       = "need_support"
	AboutKey             = "about_vasp"
	ServicesKey          = "our_services"
	ServiceBlockchainKey = "service_blockchain"
	ServiceWebKey        = "service_web"
	ServiceConsultingKey = "service_consulting"
	ContactKey           = "contact_us"
	AskQuestionKey       = "ask_question"
)

const websiteURL = "https://vasptechnologies.com"

// Option is a selectable menu entry. Exactly one of Value (a node key) or
// URL (an external link) is set.
type Option struct {
	Text  string `json:"text"`
	Value string `json:"value,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Goto creates an option that navigates to the node at key.
func Goto(text, key string) Option { return Option{Text: text, Value: key} }

// Link creates an option that opens url.
func Link(text, url string) Option { return Option{Text: text, URL: url} }

func (o Option) IsNavigation() bool { return o.Value != "" }

// Node is one dialogue state as sent to the widget.
type Node struct {
	Key        string   `json:"-"`
	Message    string   `json:"message"`
	Options    []Option `json:"options"`
	ShowGoBack bool     `json:"showGoBack"`
}

func (n Node) clone() Node {
	n.Options = append([]Option{}, n.Options...)
	return n
}

// Tree maps node keys to their fixed definitions.
type Tree map[string]Node

func mailto(email string) string { return "mailto:" + email }

// DefaultTree is the built-in support menu.
func DefaultTree(supportEmail string) Tree {
	nodes := []Node{
		{
			Key:     StartKey,
			Message: "Hi, I am VaspX, an assistant of Vasp Technologies, how can I assist you today?",
			Options: []Option{
				Goto("I need support", NeedSupportKey),
				Goto("About Vasp Technologies", AboutKey),
				Goto("Our services", ServicesKey),
				Goto("Contact us", ContactKey),
				Goto("Ask a question", AskQuestionKey),
			},
		},
		{
			Key:     NeedSupportKey,
			Message: "Sorry to hear you need help. How would you like to continue?",
			Options: []Option{
				Goto("Ask a question", AskQuestionKey),
				Link("Email our support team", mailto(supportEmail)),
				Link("Visit our help pages", websiteURL+"/support"),
			},
			ShowGoBack: true,
		},
		{
			Key: AboutKey,
			Message: "Vasp Technologies is a software company building **blockchain**, **web** and **cloud** solutions " +
				"for businesses of every size.",
			Options: []Option{
				Goto("Our services", ServicesKey),
				Link("Visit our website", websiteURL),
			},
			ShowGoBack: true,
		},
		{
			Key:     ServicesKey,
			Message: "Here is what we can do for you. Pick a service to learn more.",
			Options: []Option{
				Goto("Blockchain development", ServiceBlockchainKey),
				Goto("Web & mobile applications", ServiceWebKey),
				Goto("Technology consulting", ServiceConsultingKey),
			},
			ShowGoBack: true,
		},
		{
			Key:        ServiceBlockchainKey,
			Message:    "We design and audit smart contracts, build wallets and integrate blockchain networks into existing products.",
			Options:    []Option{Goto("Contact us", ContactKey)},
			ShowGoBack: true,
		},
		{
			Key:        ServiceWebKey,
			Message:    "We build responsive web applications and native mobile apps, from prototype to production.",
			Options:    []Option{Goto("Contact us", ContactKey)},
			ShowGoBack: true,
		},
		{
			Key:        ServiceConsultingKey,
			Message:    "Our consultants help you plan architecture, cloud migration and delivery processes.",
			Options:    []Option{Goto("Contact us", ContactKey)},
			ShowGoBack: true,
		},
		{
			Key:        ContactKey,
			Message:    "You can reach our team at **" + supportEmail + "**. We usually reply within one business day.",
			Options:    []Option{Link("Send us an email", mailto(supportEmail))},
			ShowGoBack: true,
		},
		{
			Key:        AskQuestionKey,
			Message:    "Sure! Type your question below and I'll do my best to help.",
			Options:    []Option{},
			ShowGoBack: true,
		},
	}
	tree := make(Tree, len(nodes))
	for _, n := range nodes {
		tree[n.Key] = n
	}
	return tree
}
