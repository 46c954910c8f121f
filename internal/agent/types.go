package agent

// Type identifies one configured agent persona.
type Type string

const (
	TypeGeneralIntake          Type = "general-intake"
	TypeClassification         Type = "classification"
	TypeRemovalDefense         Type = "removal-defense"
	TypeAffirmativeImmigration Type = "affirmative-immigration"
	TypePersonalInjury         Type = "personal-injury"
	TypeCriminalDefense        Type = "criminal-defense"
	TypeWorkersComp            Type = "workers-comp"
	TypeFamilyLaw              Type = "family-law"
	TypeBusinessFormation      Type = "business-formation"
	TypeEmergencyAfterHours    Type = "emergency-after-hours"
)

func (t Type) String() string {
	return string(t)
}

// Language is the primary language an agent converses in.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)
