package routing

import (
	"github.com/vozlegal/intake/internal/agent"
)

// LegalArea is the subject-matter category detected by the signal analyzer.
type LegalArea string

const (
	AreaNone              LegalArea = ""
	AreaImmigration       LegalArea = "immigration"
	AreaPersonalInjury    LegalArea = "personal-injury"
	AreaCriminalDefense   LegalArea = "criminal-defense"
	AreaWorkersComp       LegalArea = "workers-comp"
	AreaFamilyLaw         LegalArea = "family-law"
	AreaBusinessFormation LegalArea = "business-formation"
)

// emergencyPhrases trip the after-hours short circuit. These describe
// life/liberty risk (detention, arrest, imminent court) in English and
// Spanish and always outrank subject-matter matches.
var emergencyPhrases = []string{
	"ice took",
	"ice detained",
	"ice arrested",
	"immigration took",
	"detained by ice",
	"in detention",
	"detention center",
	"got arrested",
	"was arrested",
	"been arrested",
	"being arrested",
	"in jail",
	"in custody",
	"court today",
	"court tomorrow",
	"hearing today",
	"deportation order",
	"being deported",
	"la migra se llevo",
	"la migra se llevó",
	"se llevaron a",
	"lo detuvo",
	"la detuvo",
	"me detuvo",
	"esta detenido",
	"está detenido",
	"esta detenida",
	"está detenida",
	"me arrestaron",
	"lo arrestaron",
	"la arrestaron",
	"en la carcel",
	"en la cárcel",
	"corte hoy",
	"corte manana",
	"corte mañana",
	"orden de deportacion",
	"orden de deportación",
}

type directRoute struct {
	Phrase string
	Agent  agent.Type
}

// directRoutes is checked in declaration order; the first phrase contained
// in the input wins regardless of its position in the text.
var directRoutes = []directRoute{
	{"car accident", agent.TypePersonalInjury},
	{"car crash", agent.TypePersonalInjury},
	{"accidente de carro", agent.TypePersonalInjury},
	{"accidente de auto", agent.TypePersonalInjury},
	{"truck accident", agent.TypePersonalInjury},
	{"slip and fall", agent.TypePersonalInjury},
	{"green card", agent.TypeAffirmativeImmigration},
	{"tarjeta verde", agent.TypeAffirmativeImmigration},
	{"work permit", agent.TypeAffirmativeImmigration},
	{"permiso de trabajo", agent.TypeAffirmativeImmigration},
	{"citizenship", agent.TypeAffirmativeImmigration},
	{"ciudadania", agent.TypeAffirmativeImmigration},
	{"ciudadanía", agent.TypeAffirmativeImmigration},
	{"removal proceedings", agent.TypeRemovalDefense},
	{"deportation", agent.TypeRemovalDefense},
	{"deportacion", agent.TypeRemovalDefense},
	{"deportación", agent.TypeRemovalDefense},
	{"bond hearing", agent.TypeRemovalDefense},
	{"dui", agent.TypeCriminalDefense},
	{"dwi", agent.TypeCriminalDefense},
	{"criminal charge", agent.TypeCriminalDefense},
	{"arrest warrant", agent.TypeCriminalDefense},
	{"hurt at work", agent.TypeWorkersComp},
	{"injured at work", agent.TypeWorkersComp},
	{"workers comp", agent.TypeWorkersComp},
	{"accidente de trabajo", agent.TypeWorkersComp},
	{"divorce", agent.TypeFamilyLaw},
	{"divorcio", agent.TypeFamilyLaw},
	{"custody", agent.TypeFamilyLaw},
	{"custodia", agent.TypeFamilyLaw},
	{"child support", agent.TypeFamilyLaw},
	{"start a business", agent.TypeBusinessFormation},
	{"form an llc", agent.TypeBusinessFormation},
	{"abrir un negocio", agent.TypeBusinessFormation},
}

type areaKeywords struct {
	Area     LegalArea
	Keywords []string
}

// legalAreaKeywords backs the diagnostic signal analyzer. Categories are
// checked in declaration order; the first category with any match wins.
var legalAreaKeywords = []areaKeywords{
	{AreaImmigration, []string{
		"visa", "green card", "asylum", "asilo", "immigration", "inmigracion",
		"inmigración", "deportation", "deportacion", "deportación", "ice",
		"citizenship", "ciudadania", "ciudadanía", "tarjeta verde",
		"permiso de trabajo", "migra",
	}},
	{AreaPersonalInjury, []string{
		"accident", "accidente", "injury", "injured", "lesion", "lesión",
		"crash", "choque", "slip", "fall", "insurance claim",
	}},
	{AreaCriminalDefense, []string{
		"dui", "dwi", "arrest", "arrested", "arrestado", "charge", "charges",
		"cargo", "cargos", "felony", "misdemeanor", "warrant", "probation",
	}},
	{AreaWorkersComp, []string{
		"workers comp", "work injury", "hurt at work", "injured at work",
		"accidente de trabajo", "compensacion laboral", "compensación laboral",
	}},
	{AreaFamilyLaw, []string{
		"divorce", "divorcio", "custody", "custodia", "child support",
		"alimony", "manutencion", "manutención",
	}},
	{AreaBusinessFormation, []string{
		"llc", "incorporate", "business formation", "abrir un negocio",
		"contract", "contrato", "partnership",
	}},
}

// spanishIndicators flag a caller who should be served in Spanish.
var spanishIndicators = []string{
	"abogado",
	"abogada",
	"necesito",
	"ayuda",
	"por favor",
	"habla espanol",
	"habla español",
	"hablo espanol",
	"hablo español",
	"mi esposo",
	"mi esposa",
	"buenos dias",
	"buenos días",
	"buenas tardes",
	"quiero",
	"gracias",
	"¿",
}
