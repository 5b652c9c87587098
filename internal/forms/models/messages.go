package models

import (
	"strings"

	"praticai/pkg/platform/validation"
)

var fieldMessages = map[string]string{
	"codiceFiscale/" + validation.RuleInvalidLength:            "Il codice fiscale deve essere di 16 caratteri",
	"codiceFiscaleDichiarante/" + validation.RuleInvalidLength: "Il codice fiscale del dichiarante deve essere di 16 caratteri",
	"cap/" + validation.RuleInvalidLength:                      "Il CAP deve essere di 5 cifre",
	"cap/" + validation.RuleInvalidFormat:                      "Il CAP deve essere di 5 cifre",
	"provincia/" + validation.RuleInvalidLength:                "La provincia deve essere di 2 caratteri",
	"provinciaNascita/" + validation.RuleInvalidLength:         "La provincia deve essere di 2 caratteri",
	"email/" + validation.RuleInvalidFormat:                    "Formato email non valido",
	"email/" + validation.RuleTooLong:                          "Email troppo lunga",
	"telefono/" + validation.RuleInvalidFormat:                 "Formato telefono non valido",
	"codiceAteco/" + validation.RuleInvalidFormat:              "Formato ATECO non valido (es. 62.01.00)",
	"descrizioneAttivita/" + validation.RuleTooLong:            "Descrizione troppo lunga (massimo 200 caratteri)",
	"regimeFiscale/" + validation.RuleInvalidChoice:            "Seleziona un regime fiscale",
	"statoCivile/" + validation.RuleInvalidChoice:              "Seleziona uno stato civile valido",
	"dataNascita/" + validation.RuleFutureDate:                 "La data di nascita non può essere futura",
}

// companionMessages completes "Per lo stato '<status>' ..." for each
// civil-status companion field.
var companionMessages = map[string]string{
	"nomeConiuge":         "è richiesto il nome del coniuge",
	"cognomeConiuge":      "è richiesto il cognome del coniuge",
	"dataMatrimonio":      "è richiesta la data del matrimonio",
	"comuneMatrimonio":    "è richiesto il comune del matrimonio",
	"dataSeparazione":     "è richiesta la data di separazione",
	"dataDivorzio":        "è richiesta la data di divorzio",
	"tribunaleCompetente": "è richiesto il tribunale competente",
	"dataDecesso":         "è richiesta la data di decesso del coniuge",
}

// Message renders the Italian client message for a violated rule.
func Message(field, rule, param string) string {
	if msg, ok := fieldMessages[field+"/"+rule]; ok {
		return msg
	}

	switch rule {
	case validation.RuleRequired:
		return "Il campo " + field + " è obbligatorio"
	case validation.RuleConditionalRequired:
		status := param
		if parts := strings.Fields(param); len(parts) == 2 {
			status = parts[1]
		}
		if tail, ok := companionMessages[field]; ok {
			return "Per lo stato '" + status + "' " + tail
		}
		return "Per lo stato '" + status + "' è richiesto il campo " + field
	case validation.RuleInvalidDate:
		return "Formato data non valido. Utilizzare YYYY-MM-DD"
	case validation.RuleFutureDate:
		return "Le date non possono essere future"
	case validation.RuleInvalidLength:
		return "Il campo " + field + " ha una lunghezza non valida"
	case validation.RuleInvalidChoice:
		return "Valore non valido per il campo " + field
	case validation.RuleTooLong:
		return "Il campo " + field + " è troppo lungo"
	default:
		return "Il campo " + field + " ha un formato non valido"
	}
}
