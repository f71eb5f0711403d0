package domain

// Row maps a normalized column name to its cell value.
type Row map[string]string

// Table is a flat reference table loaded from a spreadsheet. Headers keep the
// order they had in the source file.
type Table struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Field is a logical column name resolved against a table's headers.
type Field string

const (
	FieldAdvisorDoc  Field = "ADVISOR_DOC"
	FieldAdvisorName Field = "ADVISOR_NAME"
	FieldDebtorDoc   Field = "DEBTOR_DOC"
	FieldObligation  Field = "OBLIGATION"
	FieldCampaign    Field = "CAMPAIGN"
	FieldBank        Field = "BANK"
)

// Columns maps each logical field to the physical header found for it.
type Columns map[Field]string

// Reference is one immutable load of the three reference tables together
// with the columns resolved for them.
type Reference struct {
	Advisors      Table
	Obligations   Table
	PaymentPoints Table
	Columns       Columns
}

// Value returns the cell for a logical field, or "" when unresolved.
func (r Row) Value(cols Columns, f Field) string {
	name, ok := cols[f]
	if !ok {
		return ""
	}
	return r[name]
}
