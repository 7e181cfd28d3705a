package memory

// StructuredReply 是上游回复必须满足的结构约定。
type StructuredReply struct {
	Topic   string `json:"topic"`
	Summary string `json:"summary"`
	FunFact string `json:"fun_fact"`
}
