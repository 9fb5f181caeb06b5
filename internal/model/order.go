package model

// NumConditions is the number of device configuration switches carried on
// every order.
const NumConditions = 10

// ConditionNames lists the ten condition columns in table order.
var ConditionNames = [NumConditions]string{
	"condition_a", "condition_b", "condition_c", "condition_d", "condition_e",
	"condition_f", "condition_g", "condition_h", "condition_i", "condition_j",
}

// OrderEvent is one placed order after cleaning. Condition flags are
// normalized from true/false or Before/After tokens into 0/1.
type OrderEvent struct {
	DoctorID   string
	OrderID    string
	SeqNo      int
	Conditions [NumConditions]uint8
}

// ActiveConditions returns how many of the ten flags are set.
func (o OrderEvent) ActiveConditions() int {
	n := 0
	for _, c := range o.Conditions {
		n += int(c)
	}
	return n
}
