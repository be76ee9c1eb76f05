package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/quest-labs/instaquest/internal/models"
	"github.com/quest-labs/instaquest/internal/repository"
)

// AccountHandler serves the persisted account and post rows, the cache
// the session client prefers over direct Graph fetches.
type AccountHandler struct {
	accounts repository.AccountRepository
	posts    repository.PostRepository
}

func NewAccountHandler(accounts repository.AccountRepository, posts repository.PostRepository) *AccountHandler {
	return &AccountHandler{accounts: accounts, posts: posts}
}

func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	acc, err := h.accounts.GetByInstagramID(c.Context(), c.Params("instagram_id"))
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch account",
		})
	}
	if acc == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Account not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(acc)
}

func (h *AccountHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.posts.ListByUserInstagramID(c.Context(), c.Params("instagram_id"))
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch posts",
		})
	}
	if posts == nil {
		posts = []*models.InstagramPost{}
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}
