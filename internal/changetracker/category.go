package changetracker

import "strings"

// categoryNamePatterns is the language-specific name-pattern table keyed
// on leaf field name substrings (spec.md §4.4 step 5.ii). For a language
// other than English, detectCategory also checks the "en" table as a
// fallback when that language's own table has no match, so a field name
// mixing languages still classifies sensibly.
var categoryNamePatterns = map[string]map[Category][]string{
	"en": {
		CategoryFee:         {"fee", "price", "cost", "amount"},
		CategoryDeadline:    {"deadline", "due", "expir"},
		CategoryRequirement: {"requirement", "required", "prereq"},
		CategoryDocument:    {"document", "form", "attachment", "certificate"},
		CategoryContact:     {"contact", "email", "phone", "telephone"},
		CategoryAppointment: {"appointment", "booking", "reservation"},
		CategoryEligibility: {"eligib", "qualif"},
		CategoryOfficeHours: {"hours", "schedule", "opening"},
		CategoryLocation:    {"location", "address", "office"},
		CategoryLink:        {"url", "link", "href"},
	},
	"es": {
		CategoryFee:         {"tarifa", "precio", "costo", "monto"},
		CategoryDeadline:    {"plazo", "vencimiento", "fecha_limite"},
		CategoryRequirement: {"requisito"},
		CategoryDocument:    {"documento", "formulario", "certificado"},
		CategoryContact:     {"contacto", "correo", "telefono"},
		CategoryAppointment: {"cita", "reserva"},
		CategoryEligibility: {"elegibilidad"},
		CategoryOfficeHours: {"horario"},
		CategoryLocation:    {"ubicacion", "direccion", "oficina"},
		CategoryLink:        {"enlace"},
	},
	"pt": {
		CategoryFee:         {"taxa", "preco", "custo", "valor"},
		CategoryDeadline:    {"prazo", "vencimento"},
		CategoryRequirement: {"requisito"},
		CategoryDocument:    {"documento", "formulario", "certificado"},
		CategoryContact:     {"contato", "email", "telefone"},
		CategoryAppointment: {"agendamento", "reserva"},
		CategoryEligibility: {"elegibilidade"},
		CategoryOfficeHours: {"horario"},
		CategoryLocation:    {"localizacao", "endereco", "escritorio"},
		CategoryLink:        {"link"},
	},
	"fr": {
		CategoryFee:         {"frais", "prix", "cout", "montant"},
		CategoryDeadline:    {"delai", "echeance"},
		CategoryRequirement: {"exigence", "requis"},
		CategoryDocument:    {"document", "formulaire", "certificat"},
		CategoryContact:     {"contact", "courriel", "telephone"},
		CategoryAppointment: {"rendez_vous", "reservation"},
		CategoryEligibility: {"eligibilite"},
		CategoryOfficeHours: {"horaire"},
		CategoryLocation:    {"emplacement", "adresse", "bureau"},
		CategoryLink:        {"lien"},
	},
	"it": {
		CategoryFee:         {"tariffa", "prezzo", "costo", "importo"},
		CategoryDeadline:    {"scadenza"},
		CategoryRequirement: {"requisito"},
		CategoryDocument:    {"documento", "modulo", "certificato"},
		CategoryContact:     {"contatto", "email", "telefono"},
		CategoryAppointment: {"appuntamento", "prenotazione"},
		CategoryEligibility: {"idoneita"},
		CategoryOfficeHours: {"orario"},
		CategoryLocation:    {"posizione", "indirizzo", "ufficio"},
		CategoryLink:        {"collegamento"},
	},
	"de": {
		CategoryFee:         {"gebuhr", "gebühr", "preis", "kosten", "betrag"},
		CategoryDeadline:    {"frist", "ablauf"},
		CategoryRequirement: {"anforderung", "voraussetzung"},
		CategoryDocument:    {"dokument", "formular", "zertifikat"},
		CategoryContact:     {"kontakt", "email", "telefon"},
		CategoryAppointment: {"termin", "buchung"},
		CategoryEligibility: {"berechtigung"},
		CategoryOfficeHours: {"offnungszeiten", "öffnungszeiten"},
		CategoryLocation:    {"standort", "adresse", "buro", "büro"},
		CategoryLink:        {"verknupfung", "link"},
	},
}

// detectCategory implements spec.md §4.4 step 5's precedence: custom
// mapping, then language name-pattern table, then value-content fallback,
// then "other".
func detectCategory(fieldName string, oldValue, newValue Value, opts Options) Category {
	if opts.CustomFieldMappings != nil {
		if cat, ok := opts.CustomFieldMappings[fieldName]; ok {
			return cat
		}
	}

	language := opts.Language
	if language == "" {
		language = "en"
	}
	patterns, ok := categoryNamePatterns[language]
	if !ok {
		patterns = categoryNamePatterns["en"]
	}
	lowerName := strings.ToLower(fieldName)
	if cat, ok := matchNamePattern(lowerName, patterns); ok {
		return cat
	}
	// English substrings always checked as a cross-language fallback.
	if language != "en" {
		if cat, ok := matchNamePattern(lowerName, categoryNamePatterns["en"]); ok {
			return cat
		}
	}

	if oldValue.IsMonetary() || newValue.IsMonetary() {
		return CategoryFee
	}

	return CategoryOther
}

// categoryPrecedence fixes a deterministic check order so a field name
// matching more than one category's substrings always resolves the same
// way (spec.md functions must be "pure and stable across runs").
var categoryPrecedence = []Category{
	CategoryFee, CategoryDeadline, CategoryRequirement, CategoryDocument,
	CategoryContact, CategoryAppointment, CategoryEligibility,
	CategoryOfficeHours, CategoryLocation, CategoryLink,
}

func matchNamePattern(lowerName string, patterns map[Category][]string) (Category, bool) {
	for _, cat := range categoryPrecedence {
		for _, s := range patterns[cat] {
			if strings.Contains(lowerName, s) {
				return cat, true
			}
		}
	}
	return "", false
}
