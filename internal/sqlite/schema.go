// Package sqlite implements the SQLite backend for the Keel identity store.
package sqlite

// Schema DDL for all tables. The database file is durable across attaches, so
// every statement is idempotent.
const (
	createCores = `CREATE TABLE IF NOT EXISTS identity_core (
    core_id TEXT PRIMARY KEY,
    anchor_statement TEXT NOT NULL,
    stability_score INTEGER NOT NULL DEFAULT 50,
    is_locked INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createBeliefs = `CREATE TABLE IF NOT EXISTS beliefs (
    belief_id TEXT PRIMARY KEY,
    statement TEXT NOT NULL,
    belief_type TEXT NOT NULL,
    conviction_score INTEGER NOT NULL DEFAULT 50,
    valid_from TEXT NOT NULL,
    valid_to TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    superseded_by TEXT,
    created_at TEXT NOT NULL
);`

	createEmbeddings = `CREATE TABLE IF NOT EXISTS belief_embeddings (
    embedding_id TEXT PRIMARY KEY,
    belief_id TEXT NOT NULL UNIQUE,
    embedding TEXT NOT NULL,
    dimensions INTEGER NOT NULL,
    norm REAL NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (belief_id) REFERENCES beliefs(belief_id)
);`

	createScars = `CREATE TABLE IF NOT EXISTS identity_scars (
    scar_id TEXT PRIMARY KEY,
    scar_type TEXT NOT NULL,
    behavioral_impact TEXT NOT NULL,
    integration_status TEXT NOT NULL DEFAULT 'raw',
    acceptance_level REAL NOT NULL DEFAULT 0.0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createEffects = `CREATE TABLE IF NOT EXISTS scar_effects (
    effect_id TEXT PRIMARY KEY,
    scar_id TEXT NOT NULL,
    description TEXT NOT NULL,
    effect_class TEXT NOT NULL DEFAULT 'behavioral',
    capability TEXT,
    cap_value REAL,
    is_permanent INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    FOREIGN KEY (scar_id) REFERENCES identity_scars(scar_id)
);`

	createAcks = `CREATE TABLE IF NOT EXISTS scar_acknowledgements (
    ack_id TEXT PRIMARY KEY,
    scar_id TEXT NOT NULL,
    context TEXT,
    acknowledged_at TEXT NOT NULL,
    FOREIGN KEY (scar_id) REFERENCES identity_scars(scar_id)
);`

	createActivations = `CREATE TABLE IF NOT EXISTS scar_activations (
    activation_id TEXT PRIMARY KEY,
    scar_id TEXT NOT NULL,
    trigger_context TEXT,
    activated_at TEXT NOT NULL,
    FOREIGN KEY (scar_id) REFERENCES identity_scars(scar_id)
);`

	createEvents = `CREATE TABLE IF NOT EXISTS formative_events (
    event_id TEXT PRIMARY KEY,
    scar_id TEXT,
    belief_id TEXT,
    description TEXT NOT NULL,
    emotional_weight REAL NOT NULL DEFAULT 0.5,
    occurred_at TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (scar_id) REFERENCES identity_scars(scar_id),
    FOREIGN KEY (belief_id) REFERENCES beliefs(belief_id)
);`

	createCausality = `CREATE TABLE IF NOT EXISTS belief_causality (
    causality_id TEXT PRIMARY KEY,
    cause_belief_id TEXT NOT NULL,
    effect_belief_id TEXT NOT NULL,
    strength REAL NOT NULL DEFAULT 0.5,
    created_at TEXT NOT NULL,
    FOREIGN KEY (cause_belief_id) REFERENCES beliefs(belief_id),
    FOREIGN KEY (effect_belief_id) REFERENCES beliefs(belief_id)
);`

	createTension = `CREATE TABLE IF NOT EXISTS cognitive_tension (
    tension_id TEXT PRIMARY KEY,
    belief_a TEXT NOT NULL,
    belief_b TEXT NOT NULL,
    tension_type TEXT NOT NULL,
    magnitude REAL NOT NULL DEFAULT 0.5,
    detected_at TEXT NOT NULL,
    resolved_at TEXT,
    FOREIGN KEY (belief_a) REFERENCES beliefs(belief_id),
    FOREIGN KEY (belief_b) REFERENCES beliefs(belief_id)
);`

	createDistress = `CREATE TABLE IF NOT EXISTS identity_distress (
    distress_id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    distress_level REAL NOT NULL DEFAULT 0.5,
    context TEXT,
    recorded_at TEXT NOT NULL
);`

	createEchoes = `CREATE TABLE IF NOT EXISTS belief_echoes (
    echo_id TEXT PRIMARY KEY,
    belief_id TEXT NOT NULL,
    echo_strength REAL NOT NULL DEFAULT 0.5,
    context TEXT,
    echoed_at TEXT NOT NULL,
    FOREIGN KEY (belief_id) REFERENCES beliefs(belief_id)
);`

	createLoad = `CREATE TABLE IF NOT EXISTS cognitive_load (
    load_id TEXT PRIMARY KEY,
    current_load REAL NOT NULL DEFAULT 0.0,
    capacity REAL NOT NULL DEFAULT 1.0,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxBeliefsCurrent    = `CREATE INDEX IF NOT EXISTS idx_beliefs_current ON beliefs(is_active, valid_to);`
	idxBeliefsType       = `CREATE INDEX IF NOT EXISTS idx_beliefs_type ON beliefs(belief_type);`
	idxEmbeddingsBelief  = `CREATE UNIQUE INDEX IF NOT EXISTS idx_embeddings_belief ON belief_embeddings(belief_id);`
	idxEffectsScar       = `CREATE INDEX IF NOT EXISTS idx_effects_scar ON scar_effects(scar_id);`
	idxEffectsActive     = `CREATE INDEX IF NOT EXISTS idx_effects_active ON scar_effects(is_active, effect_class);`
	idxAcksScar          = `CREATE INDEX IF NOT EXISTS idx_acks_scar ON scar_acknowledgements(scar_id);`
	idxActivationsScar   = `CREATE INDEX IF NOT EXISTS idx_activations_scar ON scar_activations(scar_id);`
	idxEventsScar        = `CREATE INDEX IF NOT EXISTS idx_events_scar ON formative_events(scar_id);`
	idxEventsBelief      = `CREATE INDEX IF NOT EXISTS idx_events_belief ON formative_events(belief_id);`
	idxCausalityCause    = `CREATE INDEX IF NOT EXISTS idx_causality_cause ON belief_causality(cause_belief_id);`
	idxCausalityEffect   = `CREATE INDEX IF NOT EXISTS idx_causality_effect ON belief_causality(effect_belief_id);`
	idxTensionOpen       = `CREATE INDEX IF NOT EXISTS idx_tension_open ON cognitive_tension(resolved_at);`
	idxEchoesBelief      = `CREATE INDEX IF NOT EXISTS idx_echoes_belief ON belief_echoes(belief_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createCores,
	createBeliefs,
	createEmbeddings,
	createScars,
	createEffects,
	createAcks,
	createActivations,
	createEvents,
	createCausality,
	createTension,
	createDistress,
	createEchoes,
	createLoad,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxBeliefsCurrent,
	idxBeliefsType,
	idxEmbeddingsBelief,
	idxEffectsScar,
	idxEffectsActive,
	idxAcksScar,
	idxActivationsScar,
	idxEventsScar,
	idxEventsBelief,
	idxCausalityCause,
	idxCausalityEffect,
	idxTensionOpen,
	idxEchoesBelief,
}

// tableColumns maps each table to its column list, used by the verification
// report to confirm required columns are present.
var tableColumns = map[string][]string{
	"identity_core":         {"core_id", "anchor_statement", "stability_score", "is_locked", "created_at", "updated_at"},
	"beliefs":               {"belief_id", "statement", "belief_type", "conviction_score", "valid_from", "valid_to", "is_active", "superseded_by", "created_at"},
	"belief_embeddings":     {"embedding_id", "belief_id", "embedding", "dimensions", "norm", "created_at"},
	"identity_scars":        {"scar_id", "scar_type", "behavioral_impact", "integration_status", "acceptance_level", "created_at", "updated_at"},
	"scar_effects":          {"effect_id", "scar_id", "description", "effect_class", "capability", "cap_value", "is_permanent", "is_active", "created_at"},
	"scar_acknowledgements": {"ack_id", "scar_id", "context", "acknowledged_at"},
	"scar_activations":      {"activation_id", "scar_id", "trigger_context", "activated_at"},
	"formative_events":      {"event_id", "scar_id", "belief_id", "description", "emotional_weight", "occurred_at", "created_at"},
	"belief_causality":      {"causality_id", "cause_belief_id", "effect_belief_id", "strength", "created_at"},
	"cognitive_tension":     {"tension_id", "belief_a", "belief_b", "tension_type", "magnitude", "detected_at", "resolved_at"},
	"identity_distress":     {"distress_id", "source", "distress_level", "context", "recorded_at"},
	"belief_echoes":         {"echo_id", "belief_id", "echo_strength", "context", "echoed_at"},
	"cognitive_load":        {"load_id", "current_load", "capacity", "updated_at"},
}
