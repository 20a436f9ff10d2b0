package events

// Event names. Subscribers register against these constants.
const (
	EventLeadReconciled    = "lead.reconciled"
	EventCallLogReconciled = "calllog.reconciled"
	EventAttorneyAssigned  = "attorney.assigned"
)

// LeadReconciled is published after a webhook event has been applied to a
// lead, whether the lead was created or updated.
type LeadReconciled struct {
	BaseEvent
	LeadID  int64  `json:"leadId"`
	CallID  string `json:"callId"`
	Created bool   `json:"created"`
}

// EventName returns the unique event identifier.
func (e LeadReconciled) EventName() string { return EventLeadReconciled }

// NewLeadReconciled creates a LeadReconciled event.
func NewLeadReconciled(leadID int64, callID string, created bool) LeadReconciled {
	return LeadReconciled{
		BaseEvent: NewBaseEvent(),
		LeadID:    leadID,
		CallID:    callID,
		Created:   created,
	}
}

// CallLogReconciled is published after a webhook event has been applied to a
// call log record.
type CallLogReconciled struct {
	BaseEvent
	CallLogID int64  `json:"callLogId"`
	CallID    string `json:"callId"`
	LeadID    *int64 `json:"leadId,omitempty"`
	EventType string `json:"eventType"`
	Created   bool   `json:"created"`
}

// EventName returns the unique event identifier.
func (e CallLogReconciled) EventName() string { return EventCallLogReconciled }

// NewCallLogReconciled creates a CallLogReconciled event.
func NewCallLogReconciled(callLogID int64, callID string, leadID *int64, eventType string, created bool) CallLogReconciled {
	return CallLogReconciled{
		BaseEvent: NewBaseEvent(),
		CallLogID: callLogID,
		CallID:    callID,
		LeadID:    leadID,
		EventType: eventType,
		Created:   created,
	}
}

// AttorneyAssigned is published when an attorney is assigned to a lead.
// The notification module subscribes to send the assignment email.
type AttorneyAssigned struct {
	BaseEvent
	LeadID        int64  `json:"leadId"`
	LeadName      string `json:"leadName"`
	LeadPhone     string `json:"leadPhone"`
	CaseType      string `json:"caseType"`
	AttorneyID    int64  `json:"attorneyId"`
	AttorneyName  string `json:"attorneyName"`
	AttorneyEmail string `json:"attorneyEmail"`
}

// EventName returns the unique event identifier.
func (e AttorneyAssigned) EventName() string { return EventAttorneyAssigned }

// NewAttorneyAssigned creates an AttorneyAssigned event.
func NewAttorneyAssigned(leadID int64, leadName, leadPhone, caseType string, attorneyID int64, attorneyName, attorneyEmail string) AttorneyAssigned {
	return AttorneyAssigned{
		BaseEvent:     NewBaseEvent(),
		LeadID:        leadID,
		LeadName:      leadName,
		LeadPhone:     leadPhone,
		CaseType:      caseType,
		AttorneyID:    attorneyID,
		AttorneyName:  attorneyName,
		AttorneyEmail: attorneyEmail,
	}
}
