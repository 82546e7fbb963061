// Package logging provides structured logging using uber/zap.
//
// Production logs are JSON; development logs are colored console lines at
// debug level. Each domain component receives a named child logger so log
// lines carry a "component" field (workspace, session, chat, llm, server).
//
// The level is shared by the root logger and every component and can be
// changed at runtime through LevelHandler, which the server mounts at
// /log/level:
//
//	curl -X PUT localhost:8000/log/level -d '{"level":"debug"}'
package logging
