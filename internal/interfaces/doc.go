// Package interfaces documents the seams between the bookstore packages and
// holds compile-time checks that the concrete types fit them.
//
// # Interface Categories
//
// ## Catalog Storage
//
//   - AuthorStore, BookStore: API persistence (internal/http/stores.go)
//   - AuthorPageStore, BookPageStore: read-only page data (internal/http/ui.go)
//   - AuthorLookup: resolves author_ids in book payloads (internal/serializers/books.go)
//   - Pinger: database health check (internal/http/health.go)
//
// All are implemented by the GORM repositories in internal/database.
//
// ## Change History
//
//   - ChangeRecorder: records create, update and delete events (internal/http/stores.go)
//   - AuditLister: pages through stored events (internal/http/stores.go)
//   - HistorySource: one record's events for detail pages (internal/http/ui.go)
//   - LoginRecorder: records login attempts (internal/auth/handlers.go)
//   - AuditEventCleaner: deletes expired events (internal/tasks/cleanup_audit.go)
//
// audit.Service implements all five. Events are written in the background;
// call Service.Wait before closing the database.
//
// ## Background Work
//
//   - CleanupEnqueuer: queues an audit retention run (internal/scheduler/audit_cleanup.go)
//   - CleanupSchedule: next retention run for /health (internal/http/health.go)
//
// tasks.Client queues runs in backlite. tasks.InlineCleanup runs them
// synchronously when TASKS_ENABLED=false.
//
// # Adding a Catalog Entity
//
//  1. Add the GORM model in internal/entities and migrate it in
//     database.NewDatabase.
//
//  2. Add a repository in internal/database/<entity> with List taking a
//     query.Listing so filters, ordering and pagination compose.
//
//  3. Add payload decoding and response shapes in internal/serializers.
//
//  4. Declare the store interface the controller needs in internal/http,
//     register the routes in NewRouter and add a check here:
//
//     var _ http.PublisherStore = (*publishers.Repository)(nil)
//
//  5. Pass the entity name to ChangeRecorder.RecordChange so writes show up
//     under /api/audit/.
package interfaces
