package models

// FormType identifies one of the supported bureaucratic forms.
type FormType string

const (
	FormVatOpening  FormType = "partita_iva"
	FormResidence   FormType = "autocertificazione"
	FormBirth       FormType = "autocertificazione_nascita"
	FormCivilStatus FormType = "autocertificazione_stato_civile"
)

// AllFormTypes lists every supported form in route order.
var AllFormTypes = []FormType{FormVatOpening, FormResidence, FormBirth, FormCivilStatus}

// IsValid reports whether t is a supported form.
func (t FormType) IsValid() bool {
	switch t {
	case FormVatOpening, FormResidence, FormBirth, FormCivilStatus:
		return true
	}
	return false
}

// FilePrefix is the leading component of generated file names and of the
// template file name. The VAT form keeps the name of the AA9/12 model.
func (t FormType) FilePrefix() string {
	if t == FormVatOpening {
		return "aa912"
	}
	return string(t)
}

// TemplateName is the HTML template file rendered for t.
func (t FormType) TemplateName() string {
	return t.FilePrefix() + "_template.html"
}

// SuccessMessage is returned to the client alongside the generated document.
func (t FormType) SuccessMessage() string {
	switch t {
	case FormVatOpening:
		return "Documenti generati con successo"
	case FormResidence:
		return "Autocertificazione generata con successo"
	case FormBirth:
		return "Autocertificazione di nascita generata con successo"
	case FormCivilStatus:
		return "Autocertificazione di stato civile generata con successo"
	}
	return ""
}

// Confirmation tells the user the PDF exists even when the guide could not
// be drafted.
func (t FormType) Confirmation() string {
	switch t {
	case FormVatOpening:
		return "Il modulo AA9/12 è stato generato correttamente."
	case FormResidence:
		return "L'autocertificazione è stata generata correttamente."
	case FormBirth:
		return "L'autocertificazione di nascita è stata generata correttamente."
	case FormCivilStatus:
		return "L'autocertificazione di stato civile è stata generata correttamente."
	}
	return ""
}

// TaxRegime is the VAT regime chosen on the AA9/12 form.
type TaxRegime string

const (
	RegimeForfettario TaxRegime = "forfettario"
	RegimeOrdinario   TaxRegime = "ordinario"
)

// CivilStatus is the declared civil status.
type CivilStatus string

const (
	StatusSingle    CivilStatus = "celibe_nubile"
	StatusMarried   CivilStatus = "coniugato"
	StatusSeparated CivilStatus = "separato"
	StatusDivorced  CivilStatus = "divorziato"
	StatusWidowed   CivilStatus = "vedovo"
)

// AllCivilStatuses lists the accepted civil statuses.
var AllCivilStatuses = []CivilStatus{StatusSingle, StatusMarried, StatusSeparated, StatusDivorced, StatusWidowed}

// Label is the human-readable form used in documents and prompts.
func (s CivilStatus) Label() string {
	switch s {
	case StatusSingle:
		return "Celibe/Nubile"
	case StatusMarried:
		return "Coniugato/a"
	case StatusSeparated:
		return "Separato/a"
	case StatusDivorced:
		return "Divorziato/a"
	case StatusWidowed:
		return "Vedovo/a"
	}
	return string(s)
}
