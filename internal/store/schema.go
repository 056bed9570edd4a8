package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS endpoints (
	id TEXT PRIMARY KEY,
	version TEXT NOT NULL DEFAULT '',
	method TEXT NOT NULL DEFAULT 'GET',
	path TEXT NOT NULL DEFAULT '',
	server_url TEXT NOT NULL DEFAULT '',
	api_server_url TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	request_body TEXT NOT NULL DEFAULT '', -- JSON Schema of the body
	parameters TEXT NOT NULL DEFAULT ''    -- JSON array of declared parameters
);

CREATE TABLE IF NOT EXISTS tools (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL, -- web_search, file_search, function
	endpoint_id TEXT NOT NULL DEFAULT '',
	function_schema TEXT NOT NULL DEFAULT '',
	skip_parameters TEXT NOT NULL DEFAULT '',
	server_url_override TEXT NOT NULL DEFAULT '',
	static_headers TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS chat_settings (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	system_prompt TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS chat_settings_tools (
	chat_settings_id TEXT NOT NULL,
	tool_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (chat_settings_id, tool_id)
);

CREATE TABLE IF NOT EXISTS conversations (
	chat_id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	is_group INTEGER NOT NULL DEFAULT 0,
	chat_settings_id TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT 'WHATSAPP',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	chat_id TEXT NOT NULL,
	sender TEXT NOT NULL DEFAULT '',
	sender_name TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT 'TEXT',
	content TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	tool_call_id TEXT NOT NULL DEFAULT '',
	provider_object_id TEXT NOT NULL DEFAULT '',
	function_name TEXT NOT NULL DEFAULT '',
	canonical_tool_name TEXT NOT NULL DEFAULT '',
	function_arguments TEXT NOT NULL DEFAULT '',
	function_result TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_chat_seq ON messages(chat_id, seq);
`
