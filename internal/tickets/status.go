package tickets

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusReserved  Status = "RESERVED"
	StatusSold      Status = "SOLD"
)

// IsValid checks if the ticket status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

type Type string

const (
	TypeStandard Type = "STANDARD"
	TypeVIP      Type = "VIP"
)

// IsValid checks if the ticket type is a variant this service sells
func (t Type) IsValid() bool {
	switch t {
	case TypeStandard, TypeVIP:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}
