package ledger

// Movement is one balance mutation requested by the approval workflow:
// a number of days against one leave type. UNPAID movements are accepted
// and ignored since unpaid leave is not balance-tracked.
type Movement struct {
	LeaveType string
	Days      float64
}

type BalanceSnapshot struct {
	LeaveType string  `json:"leave_type"`
	Allocated float64 `json:"allocated"`
	Used      float64 `json:"used"`
	Pending   float64 `json:"pending"`
	Available float64 `json:"available"`
}

type SnapshotResponse struct {
	EmployeeID string            `json:"employee_id"`
	Balances   []BalanceSnapshot `json:"balances"`
}

// AvailableFor returns the available days for one leave type; unpaid is
// reported as unlimited via ok=false.
func (s SnapshotResponse) AvailableFor(leaveType string) (float64, bool) {
	for _, b := range s.Balances {
		if b.LeaveType == leaveType {
			return b.Available, true
		}
	}
	return 0, false
}
