package db

// SchemaSQL defines the transcript archive tables.
const SchemaSQL = `
    -- ==========================================================================
    -- CONVERSATION TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS conversation SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS owner ON conversation TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON conversation TYPE string;
    DEFINE FIELD IF NOT EXISTS message_count ON conversation TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS created_at ON conversation TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS conversation_owner ON conversation FIELDS owner, created_at;

    -- ==========================================================================
    -- MESSAGE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS conversation ON message TYPE record<conversation>;
    DEFINE FIELD IF NOT EXISTS position ON message TYPE int;
    DEFINE FIELD IF NOT EXISTS role ON message TYPE string ASSERT $value IN ["user", "assistant"];
    DEFINE FIELD IF NOT EXISTS content ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON message TYPE datetime;

    DEFINE INDEX IF NOT EXISTS message_position ON message FIELDS conversation, position UNIQUE;
`
