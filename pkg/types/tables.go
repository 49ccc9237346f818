package types

// Standard table names for Store.GetTable.
const (
	CoresTable       = "identity_core"
	BeliefsTable     = "beliefs"
	EmbeddingsTable  = "belief_embeddings"
	ScarsTable       = "identity_scars"
	EffectsTable     = "scar_effects"
	AcksTable        = "scar_acknowledgements"
	ActivationsTable = "scar_activations"
	EventsTable      = "formative_events"
	CausalityTable   = "belief_causality"
	TensionTable     = "cognitive_tension"
	DistressTable    = "identity_distress"
	EchoesTable      = "belief_echoes"
	LoadTable        = "cognitive_load"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	CoresTable,
	BeliefsTable,
	EmbeddingsTable,
	ScarsTable,
	EffectsTable,
	AcksTable,
	ActivationsTable,
	EventsTable,
	CausalityTable,
	TensionTable,
	DistressTable,
	EchoesTable,
	LoadTable,
}
