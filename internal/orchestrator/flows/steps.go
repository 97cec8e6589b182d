package flows

const (
	ReserveWeekFlow      = "reserve_week"
	CapacityOverviewFlow = "capacity_overview"

	INPUT             = "input"
	MATCH             = "match"
	RESERVATION       = "reservation"
	EXCLUDE_UNIT_ID   = "exclude_unit_id"
	NEED_ALTERNATIVES = "need_alternatives"

	OUTCOME      = "outcome"
	DECISION     = "decision"
	CAPACITY     = "capacity"
	ALTERNATIVES = "alternatives"
	DECISIONS    = "decisions"
)
