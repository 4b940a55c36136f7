package domain

type FAQTopic string

const (
	TopicDocuments FAQTopic = "documents"
	TopicDeadlines FAQTopic = "deadlines"
	TopicProcess   FAQTopic = "process"
	TopicGeneral   FAQTopic = "general"
)

type FAQItem struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Topic    FAQTopic `json:"topic"`
}

type FAQAnswer struct {
	FAQItem
	Answer string `json:"answer"`
}
