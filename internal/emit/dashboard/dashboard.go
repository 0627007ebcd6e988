// Package dashboard emits the dashboard backend (an axum-flavored Rust HTTP
// API exposing one list/get endpoint per persistent entity) and the
// dashboard frontend (a TypeScript type mirror plus a typed fetch client),
// so both sides of the dashboard agree on field names and JSON types.
package dashboard

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nomnomgen/compiler/internal/buildcache"
	"github.com/nomnomgen/compiler/internal/core"
	"github.com/nomnomgen/compiler/internal/plan"
	"github.com/nomnomgen/compiler/internal/resolve"
	"github.com/nomnomgen/compiler/internal/typelower"
)

// Generate writes backend.rs and frontend/types.ts + frontend/client.ts
// under outDir.
func Generate(g *resolve.Graph, p *plan.Plan, apiBaseURL, outDir string) ([]buildcache.WriteResult, error) {
	var entities []*core.EntityDef
	for _, name := range p.EmissionOrder {
		e := g.ByName[name]
		if e.IsPersistent() {
			entities = append(entities, e)
		}
	}

	var results []buildcache.WriteResult

	backend, err := buildcache.WriteIfChanged(filepath.Join(outDir, "backend.rs"), []byte(renderBackend(entities, p)))
	if err != nil {
		return nil, err
	}
	results = append(results, backend)

	types, err := buildcache.WriteIfChanged(filepath.Join(outDir, "frontend", "types.ts"), []byte(renderTypes(entities, p)))
	if err != nil {
		return nil, err
	}
	results = append(results, types)

	client, err := buildcache.WriteIfChanged(filepath.Join(outDir, "frontend", "client.ts"), []byte(renderClient(entities, apiBaseURL)))
	if err != nil {
		return nil, err
	}
	results = append(results, client)

	return results, nil
}

func renderBackend(entities []*core.EntityDef, p *plan.Plan) string {
	var b strings.Builder
	b.WriteString("// Generated by nomnomgen. Do not edit by hand.\n")
	b.WriteString("use axum::{Router, routing::get, extract::{State, ws::{WebSocketUpgrade, WebSocket, Message}}, Json, response::IntoResponse};\n")
	b.WriteString("use std::sync::{Arc, RwLock};\n")
	b.WriteString("use std::time::Duration;\n\n")

	b.WriteString("/// Entities whitelisted for GET /api/stats — row counts are only ever\n")
	b.WriteString("/// queried for these table names, never an arbitrary caller-supplied\n")
	b.WriteString("/// identifier (spec.md §4.6.6).\n")
	fmt.Fprintf(&b, "pub const PERSISTENT_TABLES: &[&str] = &[%s];\n\n", quotedTableList(entities))

	b.WriteString("pub fn routes() -> Router<AppState> {\n    Router::new()\n")
	b.WriteString("        .route(\"/api/entities\", get(get_entities))\n")
	b.WriteString("        .route(\"/api/stats\", get(get_stats))\n")
	b.WriteString("        .route(\"/api/health\", get(get_health))\n")
	b.WriteString("        .route(\"/ws\", get(ws_upgrade))\n")
	for _, e := range entities {
		snake := core.ToSnakeCase(e.Name)
		fmt.Fprintf(&b, "        .route(\"/api/%s\", get(list_%s))\n", snake, snake)
		fmt.Fprintf(&b, "        .route(\"/api/%s/:id\", get(get_%s))\n", snake, snake)
	}
	b.WriteString("}\n\n")

	b.WriteString("/// GET /api/entities — the entity catalog (name, table, field names).\n")
	b.WriteString("async fn get_entities() -> Json<Vec<EntityCatalogEntry>> {\n")
	b.WriteString("    Json(entity_catalog())\n}\n\n")

	b.WriteString("#[derive(serde::Serialize)]\npub struct EntityCatalogEntry {\n    pub name: &'static str,\n    pub table: &'static str,\n    pub fields: &'static [&'static str],\n}\n\n")
	b.WriteString("fn entity_catalog() -> Vec<EntityCatalogEntry> {\n    vec![\n")
	for _, e := range entities {
		fields := make([]string, 0, len(p.FieldOrder[e.Name]))
		for _, fn := range p.FieldOrder[e.Name] {
			fields = append(fields, fmt.Sprintf("%q", core.ToSnakeCase(fn)))
		}
		fmt.Fprintf(&b, "        EntityCatalogEntry { name: %q, table: %q, fields: &[%s] },\n", e.Name, e.TableName(), strings.Join(fields, ", "))
	}
	b.WriteString("    ]\n}\n\n")

	b.WriteString("#[derive(serde::Serialize)]\npub struct TableStat {\n    pub table: String,\n    pub row_count: i64,\n}\n\n")
	b.WriteString("/// GET /api/stats — per-table row counts via a parameterized\n")
	b.WriteString("/// SELECT COUNT(*), restricted to PERSISTENT_TABLES (no identifier\n")
	b.WriteString("/// interpolation outside that whitelist).\n")
	b.WriteString("async fn get_stats(State(state): State<AppState>) -> Json<Vec<TableStat>> {\n")
	b.WriteString("    let mut stats = Vec::with_capacity(PERSISTENT_TABLES.len());\n")
	b.WriteString("    for table in PERSISTENT_TABLES {\n")
	b.WriteString("        let row_count = state.repo.count_table(table).await.unwrap_or(0);\n")
	b.WriteString("        stats.push(TableStat { table: table.to_string(), row_count });\n    }\n")
	b.WriteString("    Json(stats)\n}\n\n")

	b.WriteString("#[derive(serde::Serialize)]\npub struct Health { pub status: &'static str }\n\n")
	b.WriteString("/// GET /api/health — dashboard backend liveness.\n")
	b.WriteString("async fn get_health() -> Json<Health> {\n    Json(Health { status: \"ok\" })\n}\n\n")

	b.WriteString("/// GET /ws — upgrades to a WebSocket broadcasting newly inserted rows.\n")
	b.WriteString("/// Clients are a shared collection guarded for concurrent readers and\n")
	b.WriteString("/// exclusive writers; broadcast iterates under read-lock, holding each\n")
	b.WriteString("/// client's write-lock only for the send call (spec.md §5).\n")
	b.WriteString("async fn ws_upgrade(ws: WebSocketUpgrade, State(state): State<AppState>) -> impl IntoResponse {\n")
	b.WriteString("    ws.on_upgrade(move |socket| handle_socket(socket, state))\n}\n\n")
	b.WriteString("async fn handle_socket(mut socket: WebSocket, state: AppState) {\n")
	b.WriteString("    let mut rx = state.broadcast.subscribe();\n")
	b.WriteString("    while let Ok(msg) = rx.recv().await {\n")
	b.WriteString("        if socket.send(Message::Text(msg)).await.is_err() {\n            break;\n        }\n    }\n}\n\n")

	b.WriteString("/// One background task per persistent entity, polling its table for new\n")
	b.WriteString("/// rows at a fixed ~500ms interval and broadcasting them to every\n")
	b.WriteString("/// connected WebSocket client (spec.md §5). No backpressure beyond a\n")
	b.WriteString("/// slow client delaying the rest of the same broadcast round.\n")
	b.WriteString("pub async fn run_pollers(state: AppState) {\n    let mut tasks = Vec::new();\n")
	for _, e := range entities {
		snake := core.ToSnakeCase(e.Name)
		fmt.Fprintf(&b, "    tasks.push(tokio::spawn(poll_%s(state.clone())));\n", snake)
	}
	b.WriteString("    for t in tasks {\n        let _ = t.await;\n    }\n}\n\n")
	for _, e := range entities {
		snake := core.ToSnakeCase(e.Name)
		fmt.Fprintf(&b, "async fn poll_%s(state: AppState) {\n", snake)
		b.WriteString("    let mut interval = tokio::time::interval(Duration::from_millis(500));\n")
		b.WriteString("    loop {\n        interval.tick().await;\n")
		fmt.Fprintf(&b, "        for row in state.repo.poll_new_%s().await {\n", snake)
		b.WriteString("            if let Ok(json) = serde_json::to_string(&row) {\n                let _ = state.broadcast.send(json);\n            }\n        }\n    }\n}\n\n")
	}

	for _, e := range entities {
		snake := core.ToSnakeCase(e.Name)
		fmt.Fprintf(&b, "async fn list_%s(State(state): State<AppState>) -> Json<Vec<%sRow>> {\n", snake, e.Name)
		fmt.Fprintf(&b, "    Json(state.repo.list_%s().await)\n}\n\n", snake)
		fmt.Fprintf(&b, "async fn get_%s(State(state): State<AppState>, axum::extract::Path(id): axum::extract::Path<i64>) -> Json<Option<%sRow>> {\n", snake, e.Name)
		fmt.Fprintf(&b, "    Json(state.repo.get_%s(id).await)\n}\n\n", snake)
	}
	return b.String()
}

func quotedTableList(entities []*core.EntityDef) string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = fmt.Sprintf("%q", e.TableName())
	}
	return strings.Join(out, ", ")
}

func renderTypes(entities []*core.EntityDef, p *plan.Plan) string {
	var b strings.Builder
	b.WriteString("// Generated by nomnomgen. Do not edit by hand.\n\n")
	for _, e := range entities {
		fmt.Fprintf(&b, "export interface %s {\n  id: number;\n", e.Name)
		for _, name := range p.FieldOrder[e.Name] {
			f := e.FieldByName(name)
			if f == nil {
				continue
			}
			fmt.Fprintf(&b, "  %s: %s;\n", f.ColumnName(), typelower.JSONType(f.Type, f.Nullable))
		}
		b.WriteString("}\n\n")
	}
	return b.String()
}

func renderClient(entities []*core.EntityDef, apiBaseURL string) string {
	var b strings.Builder
	b.WriteString("// Generated by nomnomgen. Do not edit by hand.\n")
	fmt.Fprintf(&b, "const BASE_URL = %q;\n\n", apiBaseURL)
	b.WriteString("import type { " + joinNames(entities) + " } from \"./types\";\n\n")
	for _, e := range entities {
		snake := core.ToSnakeCase(e.Name)
		fmt.Fprintf(&b, "export async function list%s(): Promise<%s[]> {\n", e.Name, e.Name)
		fmt.Fprintf(&b, "  const res = await fetch(`${BASE_URL}/%s`);\n  return res.json();\n}\n\n", snake)
		fmt.Fprintf(&b, "export async function get%s(id: number): Promise<%s | null> {\n", e.Name, e.Name)
		fmt.Fprintf(&b, "  const res = await fetch(`${BASE_URL}/%s/${id}`);\n  return res.json();\n}\n\n", snake)
	}
	return b.String()
}

func joinNames(entities []*core.EntityDef) string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return strings.Join(names, ", ")
}
