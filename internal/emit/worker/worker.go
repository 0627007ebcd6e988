// Package worker emits the async worker binary: one consumer task per
// persistent, non-reference entity (spec.md §4.6.5, §5). Each task
// subscribes to a durable queue subject "messages.ingest.<Entity>" under a
// durable consumer name "<Entity>-worker" (spec.md §6), decodes the
// envelope body as JSON, runs the entity's extraction program, then calls
// its get_or_create. Acknowledgement happens strictly after successful
// persistence (at-least-once delivery; spec.md §5, testable property S6).
package worker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nomnomgen/compiler/internal/buildcache"
	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
)

const envelopeType = `// Generated by nomnomgen. Do not edit by hand.
use serde::{Deserialize, Serialize};
use uuid::Uuid;
use chrono::{DateTime, Utc};

/// The fixed envelope shape every queue message arrives in, regardless of
/// entity type (spec.md §6).
#[derive(Debug, Clone, Serialize, Deserialize)]
pub struct Envelope {
    pub message_id: Uuid,
    pub body: String,
    pub entity_type: Option<String>,
    pub received_at: DateTime<Utc>,
    pub retry_count: u32,
    pub source: Option<String>,
}

/// Outcome of handling one envelope, distinguishing transient failures
/// (redeliver via nack) from permanent ones (ack and record out-of-band).
pub enum HandleOutcome {
    Acked,
    NackRedeliver,
    AckedPermanentFailure(String),
}

`

// Generate writes worker.rs under outDir.
func Generate(g *resolve.Graph, p *plan.Plan, outDir string) ([]buildcache.WriteResult, error) {
	var b strings.Builder
	b.WriteString(envelopeType)

	var subjects []*core.EntityDef
	for _, name := range p.EmissionOrder {
		e := g.ByName[name]
		if !e.IsPersistent() || e.SourceType == core.SourceReference {
			continue
		}
		subjects = append(subjects, e)
	}

	for _, e := range subjects {
		writeSubjectConsts(&b, e)
		writeHandler(&b, e)
	}

	writeRunFn(&b, subjects)

	path := filepath.Join(outDir, "worker.rs")
	res, err := buildcache.WriteIfChanged(path, []byte(b.String()))
	if err != nil {
		return nil, err
	}

	ingestPath := filepath.Join(outDir, "ingest.rs")
	ingestRes, err := buildcache.WriteIfChanged(ingestPath, []byte(renderIngest()))
	if err != nil {
		return nil, err
	}

	return []buildcache.WriteResult{res, ingestRes}, nil
}

// renderIngest emits the producer-side HTTP surface spec.md §6 specifies:
// the front door that accepts inbound messages, wraps them in an Envelope,
// and publishes onto the queue the consumers above subscribe to.
func renderIngest() string {
	var b strings.Builder
	b.WriteString("// Generated by nomnomgen. Do not edit by hand.\n")
	b.WriteString("use axum::{Json, extract::{State, Path}, http::StatusCode};\n")
	b.WriteString("use serde::Serialize;\n")
	b.WriteString("use uuid::Uuid;\n")
	b.WriteString("use chrono::Utc;\n")
	b.WriteString("use super::Envelope;\n\n")

	b.WriteString("#[derive(Serialize)]\npub struct AcceptedResponse {\n    pub message_id: Uuid,\n    pub status: &'static str,\n    pub timestamp: chrono::DateTime<Utc>,\n}\n\n")

	b.WriteString("/// POST /ingest/message — validates the JSON body, enqueues an envelope,\n")
	b.WriteString("/// responds 202 immediately (spec.md §6).\n")
	b.WriteString("pub async fn ingest_message(State(state): State<IngestState>, body: String) -> (StatusCode, Json<AcceptedResponse>) {\n")
	b.WriteString("    let message_id = Uuid::new_v4();\n")
	b.WriteString("    let envelope = Envelope {\n        message_id,\n        body,\n        entity_type: None,\n        received_at: Utc::now(),\n        retry_count: 0,\n        source: None,\n    };\n")
	b.WriteString("    state.queue.publish(envelope).await;\n")
	b.WriteString("    (StatusCode::ACCEPTED, Json(AcceptedResponse { message_id, status: \"accepted\", timestamp: Utc::now() }))\n}\n\n")

	b.WriteString("#[derive(Serialize)]\npub struct BatchResponse {\n    pub processed: usize,\n    pub inserted: usize,\n    pub failed: usize,\n    pub errors: Vec<String>,\n}\n\n")

	b.WriteString("/// POST /ingest/batch — newline-delimited JSON; one envelope published per\n")
	b.WriteString("/// well-formed line, malformed lines counted as failed with a 1-based\n")
	b.WriteString("/// line-number error message (spec.md §8 scenario S5).\n")
	b.WriteString("pub async fn ingest_batch(State(state): State<IngestState>, body: String) -> (StatusCode, Json<BatchResponse>) {\n")
	b.WriteString("    let mut resp = BatchResponse { processed: 0, inserted: 0, failed: 0, errors: Vec::new() };\n")
	b.WriteString("    for (i, line) in body.lines().enumerate() {\n")
	b.WriteString("        resp.processed += 1;\n")
	b.WriteString("        if line.trim().is_empty() {\n            continue;\n        }\n")
	b.WriteString("        match serde_json::from_str::<serde_json::Value>(line) {\n")
	b.WriteString("            Ok(_) => {\n")
	b.WriteString("                let envelope = Envelope {\n                    message_id: Uuid::new_v4(),\n                    body: line.to_string(),\n                    entity_type: None,\n                    received_at: Utc::now(),\n                    retry_count: 0,\n                    source: None,\n                };\n")
	b.WriteString("                state.queue.publish(envelope).await;\n")
	b.WriteString("                resp.inserted += 1;\n            }\n")
	b.WriteString("            Err(e) => {\n")
	b.WriteString("                resp.failed += 1;\n")
	b.WriteString("                resp.errors.push(format!(\"Line {}: Invalid JSON: {}\", i + 1, e));\n            }\n")
	b.WriteString("        }\n    }\n")
	b.WriteString("    (StatusCode::ACCEPTED, Json(resp))\n}\n\n")

	b.WriteString("#[derive(Serialize)]\npub struct StatusResponse {\n    pub message_id: Uuid,\n    pub status: &'static str,\n}\n\n")

	b.WriteString("/// GET /ingest/status/:id — at-least reports \"accepted\"; a real\n")
	b.WriteString("/// implementation tracks further states out of the core's scope.\n")
	b.WriteString("pub async fn ingest_status(Path(id): Path<Uuid>) -> Json<StatusResponse> {\n")
	b.WriteString("    Json(StatusResponse { message_id: id, status: \"accepted\" })\n}\n\n")

	b.WriteString("#[derive(Serialize)]\npub struct Health { pub status: &'static str }\n\n")
	b.WriteString("/// GET /health — liveness.\n")
	b.WriteString("pub async fn health() -> Json<Health> {\n    Json(Health { status: \"ok\" })\n}\n\n")
	b.WriteString("/// GET /ready — readiness; checks queue connectivity.\n")
	b.WriteString("pub async fn ready(State(state): State<IngestState>) -> (StatusCode, Json<Health>) {\n")
	b.WriteString("    if state.queue.is_connected().await {\n        (StatusCode::OK, Json(Health { status: \"ok\" }))\n    } else {\n        (StatusCode::SERVICE_UNAVAILABLE, Json(Health { status: \"queue_unreachable\" }))\n    }\n}\n")

	return b.String()
}

func writeSubjectConsts(b *strings.Builder, e *core.EntityDef) {
	up := strings.ToUpper(core.ToSnakeCase(e.Name))
	fmt.Fprintf(b, "pub const %s_SUBJECT: &str = \"messages.ingest.%s\";\n", up, e.Name)
	fmt.Fprintf(b, "pub const %s_DURABLE_NAME: &str = \"%s-worker\";\n\n", up, e.Name)
}

func writeHandler(b *strings.Builder, e *core.EntityDef) {
	snake := core.ToSnakeCase(e.Name)
	fmt.Fprintf(b, "/// Decodes, extracts, and persists one %s envelope. Per spec: transient\n", e.Name)
	b.WriteString("/// failures (pool exhaustion, connection loss) return NackRedeliver so the\n")
	b.WriteString("/// queue redelivers; permanent failures (invalid body, unresolvable\n")
	b.WriteString("/// required field) are acked and recorded out-of-band.\n")
	fmt.Fprintf(b, "pub async fn handle_%s(pool: &deadpool_postgres::Pool, env: &Envelope) -> HandleOutcome {\n", snake)
	fmt.Fprintf(b, "    let record = match crate::extraction::extract_%s(&env.body) {\n", snake)
	b.WriteString("        Ok(r) => r,\n")
	b.WriteString("        Err(e) => {\n")
	fmt.Fprintf(b, "            record_failure(\"%s\", env, &e);\n", e.Name)
	b.WriteString("            return HandleOutcome::AckedPermanentFailure(e.to_string());\n        }\n    };\n\n")
	b.WriteString("    let mut conn = match pool.get().await {\n")
	b.WriteString("        Ok(c) => c,\n")
	b.WriteString("        Err(_) => return HandleOutcome::NackRedeliver,\n    };\n\n")
	fmt.Fprintf(b, "    match get_or_create_%s(&mut conn, &record).await {\n", snake)
	b.WriteString("        Ok(_row) => HandleOutcome::Acked,\n")
	b.WriteString("        Err(e) if is_transient_db_error(&e) => HandleOutcome::NackRedeliver,\n")
	b.WriteString("        Err(e) => {\n")
	fmt.Fprintf(b, "            record_failure(\"%s\", env, &e);\n", e.Name)
	b.WriteString("            HandleOutcome::AckedPermanentFailure(e.to_string())\n        }\n    }\n}\n\n")
}

func writeRunFn(b *strings.Builder, subjects []*core.EntityDef) {
	b.WriteString("/// Classifies a database error as transient (pool exhaustion, connection\n")
	b.WriteString("/// loss — worth redelivering) vs. permanent (constraint violation, bad\n")
	b.WriteString("/// data). get_or_create already absorbs unique-constraint races, so any\n")
	b.WriteString("/// error reaching here outside a broken connection is permanent.\n")
	b.WriteString("fn is_transient_db_error(e: &diesel::result::Error) -> bool {\n")
	b.WriteString("    matches!(e, diesel::result::Error::BrokenTransactionManager | diesel::result::Error::DatabaseError(diesel::result::DatabaseErrorKind::ClosedConnection, _))\n}\n\n")

	b.WriteString("/// Records a permanent failure out-of-band (spec.md §4.6.5 step 5). The\n")
	b.WriteString("/// worker never retries these; the envelope is acked regardless.\n")
	b.WriteString("fn record_failure(entity: &str, env: &Envelope, err: &dyn std::fmt::Display) {\n")
	b.WriteString("    tracing::error!(entity, message_id = %env.message_id, error = %err, \"permanent extraction/persistence failure\");\n}\n\n")

	b.WriteString("/// Spawns one independent consumer task per persistent entity, each\n")
	b.WriteString("/// subscribed to its own durable queue subject. No ordering is guaranteed\n")
	b.WriteString("/// across tasks; within a task processing is serial (spec.md §5).\n")
	b.WriteString("pub async fn run(queue: impl QueueClient + Clone + Send + 'static, pool: deadpool_postgres::Pool, mut shutdown: tokio::sync::watch::Receiver<bool>) {\n")
	b.WriteString("    let mut tasks = Vec::new();\n")
	for _, e := range subjects {
		snake := core.ToSnakeCase(e.Name)
		up := strings.ToUpper(snake)
		fmt.Fprintf(b, "    tasks.push(tokio::spawn(consume_loop(queue.clone(), pool.clone(), %s_SUBJECT, %s_DURABLE_NAME, handle_%s, shutdown.clone())));\n", up, up, snake)
	}
	b.WriteString("    for t in tasks {\n        let _ = t.await;\n    }\n}\n")
}
