package model

// Doctor is the doctor profile. Looked up by the uid field first, then by
// document id (profiles were written under both conventions over time).
type Doctor struct {
	Base
	UID            string `db:"uid" json:"uid"`
	Name           string `db:"name" json:"name"`
	Email          string `db:"email" json:"email"`
	Phone          string `db:"phone" json:"phone"`
	Specialization string `db:"specialization" json:"specialization"`
	Status         string `db:"status" json:"status"`
}

// SearchField implements search.Fielder.
func (d *Doctor) SearchField(name string) string {
	switch name {
	case "name":
		return d.Name
	case "email":
		return d.Email
	case "specialization":
		return d.Specialization
	default:
		return ""
	}
}

// Nurse is the nurse profile.
type Nurse struct {
	Base
	UID        string `db:"uid" json:"uid"`
	Name       string `db:"name" json:"name"`
	Email      string `db:"email" json:"email"`
	Phone      string `db:"phone" json:"phone"`
	Department string `db:"department" json:"department"`
	Status     string `db:"status" json:"status"`
}

// SearchField implements search.Fielder.
func (n *Nurse) SearchField(name string) string {
	switch name {
	case "name":
		return n.Name
	case "email":
		return n.Email
	case "department":
		return n.Department
	default:
		return ""
	}
}

// ResponsibleParty is the profile of a family member or guardian who follows
// one or more patients.
type ResponsibleParty struct {
	Base
	UID          string `db:"uid" json:"uid"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Phone        string `db:"phone" json:"phone"`
	Relationship string `db:"relationship" json:"relationship"`
}
