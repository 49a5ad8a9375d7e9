package interfaces

// Compile-time checks that concrete types satisfy the interfaces their
// consumers declare. Build this package to verify them.

import (
	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/authors"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/serializers"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// =============================================================================
// Catalog storage
// =============================================================================

var _ http.AuthorStore = (*authors.Repository)(nil)
var _ http.AuthorPageStore = (*authors.Repository)(nil)
var _ serializers.AuthorLookup = (*authors.Repository)(nil)

var _ http.BookStore = (*books.Repository)(nil)
var _ http.BookPageStore = (*books.Repository)(nil)

var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Change history
// =============================================================================

var _ http.ChangeRecorder = (*audit.Service)(nil)
var _ http.AuditLister = (*audit.Service)(nil)
var _ http.HistorySource = (*audit.Service)(nil)
var _ auth.LoginRecorder = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Background work
// =============================================================================

var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)
var _ scheduler.CleanupEnqueuer = tasks.InlineCleanup{}

var _ http.CleanupSchedule = (*scheduler.AuditCleanupScheduler)(nil)
