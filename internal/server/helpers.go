package server

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"foodgram/internal/middleware"
	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageSize    = 6
	maxPaginationLimit = 100
)

// Pagination holds parsed page/limit query parameters.
type Pagination struct {
	Page  int
	Limit int
}

// parsePagination extracts page and limit query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	if defaultLimit <= 0 {
		defaultLimit = defaultPageSize
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, Limit: limit}
}

// pageResponse is a counted page with links to its neighbours.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newPageResponse[T any](c *fiber.Ctx, p *models.Page[T], pg Pagination) pageResponse[T] {
	out := pageResponse[T]{Count: p.Count, Results: p.Results}
	if out.Results == nil {
		out.Results = []T{}
	}
	if int64(pg.Page*pg.Limit) < p.Count {
		next := pageURL(c, pg.Page+1)
		out.Next = &next
	}
	if pg.Page > 1 {
		prev := pageURL(c, pg.Page-1)
		out.Previous = &prev
	}
	return out
}

// pageURL rewrites the page query parameter of the current request URL.
func pageURL(c *fiber.Ctx, page int) string {
	query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u := c.BaseURL() + c.Path()
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into dst. On failure it writes a 400 and
// returns errResponseWritten.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "recipeId" -> "recipe ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

func currentUserID(c *fiber.Ctx) uint {
	return middleware.CurrentUserID(c)
}

// respond writes err with the status derived from its code.
func respond(c *fiber.Ctx, err error) error {
	return models.RespondWithAppError(c, err)
}
