package repoargs

type CreateAuditEntry struct {
	ActorID     int64
	Action      string
	TargetType  string
	TargetID    int64
	Description string
}
