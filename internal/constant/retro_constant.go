package constant

// Session phases. Transitions are strictly forward, see service.PhaseOrder.
const (
	PhaseFeedback  = "feedback"
	PhaseReview    = "review"
	PhaseVoting    = "voting"
	PhaseActions   = "actions"
	PhaseCompleted = "completed"
)

// Item categories. Fixed buckets, immutable after creation.
const (
	CategoryGood   = "good"
	CategoryBad    = "bad"
	CategoryIdea   = "idea"
	CategoryAction = "action"
)

// Vote targets.
const (
	TargetTypeItem  = "item"
	TargetTypeGroup = "group"

	// MaxVotesPerTarget caps how much weight a single user may put on one target.
	MaxVotesPerTarget = 2

	// DefaultVoteBudget is the per-user budget for new sessions.
	DefaultVoteBudget = 5
)

// Reorder element types (mirror vote targets but kept separate on purpose:
// reorder also accepts items that can never be vote targets).
const (
	ElementTypeItem  = "item"
	ElementTypeGroup = "group"
)

// Broadcast event types. The envelope is {"type": <one of these>, ...payload}.
// Unknown types must be ignored by subscribers.
const (
	EventTimerStarted          = "timer_started"
	EventTimerStopped          = "timer_stopped"
	EventTimerLikeUpdate       = "timer_like_update"
	EventItemAdded             = "item_added"
	EventItemUpdated           = "item_updated"
	EventItemDeleted           = "item_deleted"
	EventGroupCreated          = "group_created"
	EventGroupUpdated          = "group_updated"
	EventItemsReordered        = "items_reordered"
	EventVoteUpdated           = "vote_updated"
	EventItemDiscussed         = "item_discussed"
	EventStepChanged           = "step_changed"
	EventConnectedUsersUpdated = "connected_users_updated"
)

// Hub sub-topics. Every event is also mirrored on TopicSession so old
// subscribers that only know the catch-all keep working.
const (
	TopicSession        = "session"
	TopicTimer          = "timer"
	TopicReview         = "review"
	TopicConnectedUsers = "connected-users"
	TopicStep           = "step"
	TopicDiscussion     = "discussion"
)

// TopicForEvent maps an event type to its narrow sub-topic.
func TopicForEvent(eventType string) string {
	switch eventType {
	case EventTimerStarted, EventTimerStopped, EventTimerLikeUpdate:
		return TopicTimer
	case EventItemAdded, EventItemUpdated, EventItemDeleted,
		EventGroupCreated, EventGroupUpdated, EventItemsReordered:
		return TopicReview
	case EventVoteUpdated, EventItemDiscussed:
		return TopicDiscussion
	case EventStepChanged:
		return TopicStep
	case EventConnectedUsersUpdated:
		return TopicConnectedUsers
	default:
		return TopicSession
	}
}

// ValidCategory reports whether c is one of the four fixed buckets.
func ValidCategory(c string) bool {
	switch c {
	case CategoryGood, CategoryBad, CategoryIdea, CategoryAction:
		return true
	}
	return false
}
