package models

import (
	"praticai/pkg/platform/validation"
)

// Form is the view of a validated request shared by the renderer, the guide
// drafter and the artifact naming scheme.
type Form interface {
	Validate() error
	Type() FormType
	// Subject returns the surname and name the generated file is named after.
	Subject() (surname, name string)
	Fields() []Field
}

// VatOpeningRequest is the body of POST /api/generate (AA9/12 model).
type VatOpeningRequest struct {
	Nome                string    `json:"nome" validate:"required,max=100"`
	Cognome             string    `json:"cognome" validate:"required,max=100"`
	CodiceFiscale       string    `json:"codiceFiscale" validate:"required,len=16"`
	Indirizzo           string    `json:"indirizzo" validate:"required,max=100"`
	Civico              string    `json:"civico" validate:"required,max=10"`
	Cap                 string    `json:"cap" validate:"required,len=5,number"`
	Comune              string    `json:"comune" validate:"required,max=100"`
	Provincia           string    `json:"provincia" validate:"required,len=2"`
	CodiceAteco         string    `json:"codiceAteco" validate:"required,ateco"`
	DescrizioneAttivita string    `json:"descrizioneAttivita" validate:"required,max=200"`
	RegimeFiscale       TaxRegime `json:"regimeFiscale" validate:"required,oneof=forfettario ordinario"`
	DataInizio          string    `json:"dataInizio" form:"date" validate:"required,datetime=2006-01-02"`
	Email               string    `json:"email" validate:"required,email,max=100"`
	Telefono            string    `json:"telefono,omitempty" form:"optional" validate:"omitempty,phone"`
}

// Validate normalizes the request in place and validates it.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VatOpeningRequest) Validate() error {
	return r.ValidateWith(validation.Default())
}

// ValidateWith is Validate against an explicit validator.
func (r *VatOpeningRequest) ValidateWith(v *validation.Validator) error {
	trimStrings(r)
	r.CodiceFiscale = validation.Code(r.CodiceFiscale)
	r.Provincia = validation.Code(r.Provincia)
	return v.Struct(r, Message)
}

func (r *VatOpeningRequest) Type() FormType { return FormVatOpening }

func (r *VatOpeningRequest) Subject() (string, string) { return r.Cognome, r.Nome }

func (r *VatOpeningRequest) Fields() []Field { return fieldsOf(r) }

// ResidenceRequest is the body of POST /api/autocertificazione.
type ResidenceRequest struct {
	Nome               string `json:"nome" validate:"required,max=100"`
	Cognome            string `json:"cognome" validate:"required,max=100"`
	CodiceFiscale      string `json:"codiceFiscale" validate:"required,len=16"`
	LuogoNascita       string `json:"luogoNascita" validate:"required,max=100"`
	DataNascita        string `json:"dataNascita" form:"date" validate:"required,datetime=2006-01-02,notfuture"`
	ComuneResidenza    string `json:"comuneResidenza" validate:"required,max=100"`
	IndirizzoResidenza string `json:"indirizzoResidenza" validate:"required,max=100"`
	MotivoRichiesta    string `json:"motivoRichiesta,omitempty" form:"optional" validate:"max=500"`
}

// Validate normalizes the request in place and validates it.
func (r *ResidenceRequest) Validate() error {
	return r.ValidateWith(validation.Default())
}

// ValidateWith is Validate against an explicit validator.
func (r *ResidenceRequest) ValidateWith(v *validation.Validator) error {
	trimStrings(r)
	r.CodiceFiscale = validation.Code(r.CodiceFiscale)
	return v.Struct(r, Message)
}

func (r *ResidenceRequest) Type() FormType { return FormResidence }

func (r *ResidenceRequest) Subject() (string, string) { return r.Cognome, r.Nome }

func (r *ResidenceRequest) Fields() []Field { return fieldsOf(r) }

// BirthRequest is the body of POST /api/autocertificazione-nascita. The
// declarant may differ from the person whose birth is declared.
type BirthRequest struct {
	NomeDichiarante          string `json:"nomeDichiarante" validate:"required,max=100"`
	CognomeDichiarante       string `json:"cognomeDichiarante" validate:"required,max=100"`
	CodiceFiscaleDichiarante string `json:"codiceFiscaleDichiarante" validate:"required,len=16"`

	NomeNato         string `json:"nomeNato" validate:"required,max=100"`
	CognomeNato      string `json:"cognomeNato" validate:"required,max=100"`
	DataNascita      string `json:"dataNascita" form:"date" validate:"required,datetime=2006-01-02,notfuture"`
	LuogoNascita     string `json:"luogoNascita" validate:"required,max=100"`
	ProvinciaNascita string `json:"provinciaNascita" validate:"required,len=2"`
	Ospedale         string `json:"ospedale,omitempty" form:"optional" validate:"max=200"`

	MotivoRichiesta string `json:"motivoRichiesta,omitempty" form:"optional" validate:"max=500"`
}

// Validate normalizes the request in place and validates it.
func (r *BirthRequest) Validate() error {
	return r.ValidateWith(validation.Default())
}

// ValidateWith is Validate against an explicit validator.
func (r *BirthRequest) ValidateWith(v *validation.Validator) error {
	trimStrings(r)
	r.CodiceFiscaleDichiarante = validation.Code(r.CodiceFiscaleDichiarante)
	r.ProvinciaNascita = validation.Code(r.ProvinciaNascita)
	return v.Struct(r, Message)
}

func (r *BirthRequest) Type() FormType { return FormBirth }

// Subject is the person whose birth is declared, not the declarant.
func (r *BirthRequest) Subject() (string, string) { return r.CognomeNato, r.NomeNato }

func (r *BirthRequest) Fields() []Field { return fieldsOf(r) }

// CivilStatusRequest is the body of POST /api/autocertificazione-stato-civile.
// The companion fields are required depending on StatoCivile.
type CivilStatusRequest struct {
	Nome               string `json:"nome" validate:"required,max=100"`
	Cognome            string `json:"cognome" validate:"required,max=100"`
	CodiceFiscale      string `json:"codiceFiscale" validate:"required,len=16"`
	LuogoNascita       string `json:"luogoNascita" validate:"required,max=100"`
	DataNascita        string `json:"dataNascita" form:"date" validate:"required,datetime=2006-01-02,notfuture"`
	ComuneResidenza    string `json:"comuneResidenza" validate:"required,max=100"`
	IndirizzoResidenza string `json:"indirizzoResidenza" validate:"required,max=100"`

	StatoCivile CivilStatus `json:"statoCivile" validate:"required,oneof=celibe_nubile coniugato separato divorziato vedovo"`

	NomeConiuge         string `json:"nomeConiuge,omitempty" form:"optional" validate:"required_if=StatoCivile coniugato,max=100"`
	CognomeConiuge      string `json:"cognomeConiuge,omitempty" form:"optional" validate:"required_if=StatoCivile coniugato,max=100"`
	DataMatrimonio      string `json:"dataMatrimonio,omitempty" form:"date,optional" validate:"required_if=StatoCivile coniugato,omitempty,datetime=2006-01-02,notfuture"`
	ComuneMatrimonio    string `json:"comuneMatrimonio,omitempty" form:"optional" validate:"required_if=StatoCivile coniugato,max=100"`
	DataSeparazione     string `json:"dataSeparazione,omitempty" form:"date,optional" validate:"required_if=StatoCivile separato,omitempty,datetime=2006-01-02,notfuture"`
	DataDivorzio        string `json:"dataDivorzio,omitempty" form:"date,optional" validate:"required_if=StatoCivile divorziato,omitempty,datetime=2006-01-02,notfuture"`
	TribunaleCompetente string `json:"tribunaleCompetente,omitempty" form:"optional" validate:"required_if=StatoCivile separato,required_if=StatoCivile divorziato,max=200"`
	DataDecesso         string `json:"dataDecesso,omitempty" form:"date,optional" validate:"required_if=StatoCivile vedovo,omitempty,datetime=2006-01-02,notfuture"`

	MotivoRichiesta string `json:"motivoRichiesta,omitempty" form:"optional" validate:"max=500"`
}

// Validate normalizes the request in place and validates it, conditional
// companions included, in a single pass.
func (r *CivilStatusRequest) Validate() error {
	return r.ValidateWith(validation.Default())
}

// ValidateWith is Validate against an explicit validator.
func (r *CivilStatusRequest) ValidateWith(v *validation.Validator) error {
	trimStrings(r)
	r.CodiceFiscale = validation.Code(r.CodiceFiscale)
	return v.Struct(r, Message)
}

func (r *CivilStatusRequest) Type() FormType { return FormCivilStatus }

func (r *CivilStatusRequest) Subject() (string, string) { return r.Cognome, r.Nome }

func (r *CivilStatusRequest) Fields() []Field { return fieldsOf(r) }

// Facts lists the populated companion facts relevant to the declared status,
// dates formatted DD/MM/YYYY.
func (r *CivilStatusRequest) Facts() []string {
	var facts []string
	add := func(label, value string) {
		if value != "" {
			facts = append(facts, label+": "+value)
		}
	}

	switch r.StatoCivile {
	case StatusMarried:
		if r.NomeConiuge != "" && r.CognomeConiuge != "" {
			add("Coniuge", r.NomeConiuge+" "+r.CognomeConiuge)
		}
		add("Data matrimonio", validation.FormatDate(r.DataMatrimonio))
		add("Comune matrimonio", r.ComuneMatrimonio)
	case StatusSeparated:
		add("Data separazione", validation.FormatDate(r.DataSeparazione))
		add("Tribunale competente", r.TribunaleCompetente)
	case StatusDivorced:
		add("Data divorzio", validation.FormatDate(r.DataDivorzio))
		add("Tribunale competente", r.TribunaleCompetente)
	case StatusWidowed:
		add("Data decesso coniuge", validation.FormatDate(r.DataDecesso))
	}
	return facts
}
