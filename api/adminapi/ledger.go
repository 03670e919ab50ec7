package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-certichain/certichain/api"
	"github.com/go-certichain/certichain/storage/model"
)

const (
	defaultJournalLimit = 100
	maxJournalLimit     = 1000
)

func registerLedger(r fiber.Router, journal model.LedgerJournal) {
	g := r.Group("/ledger")

	type journalQuery struct {
		After uint64 `query:"after"`
		Limit int    `query:"limit"`
	}
	g.Get("/commits", func(c *fiber.Ctx) error {
		var q journalQuery
		if err := c.QueryParser(&q); err != nil {
			return api.SendError(c, fiber.NewError(fiber.StatusBadRequest, "invalid query: "+err.Error()))
		}
		switch {
		case q.Limit <= 0:
			q.Limit = defaultJournalLimit
		case q.Limit > maxJournalLimit:
			q.Limit = maxJournalLimit
		}
		commits, err := journal.Journal(c.UserContext(), q.After, q.Limit)
		if err != nil {
			return api.SendError(c, err)
		}
		if commits == nil {
			commits = []model.LedgerCommit{}
		}
		return c.JSON(commits)
	})
}
