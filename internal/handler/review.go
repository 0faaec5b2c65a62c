package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MathiAviles/abogapp/internal/apperr"
	"github.com/MathiAviles/abogapp/internal/model"
	"github.com/MathiAviles/abogapp/internal/repository"
)

// ReviewStore persists and aggregates reviews.
type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	Summary(ctx context.Context, lawyerID uint64, recent int) (repository.ReviewSummary, error)
	List(ctx context.Context, lawyerID uint64, page, perPage int) ([]model.Review, int, error)
}

// MeetingReader loads a meeting by id.
type MeetingReader interface {
	GetByID(ctx context.Context, id uint64) (model.Meeting, error)
}

// UserBatch loads several accounts at once.
type UserBatch interface {
	GetMany(ctx context.Context, ids []uint64) (map[uint64]model.User, error)
}

// ReviewHandler serves client reviews of completed meetings.
type ReviewHandler struct {
	Reviews  ReviewStore
	Meetings MeetingReader
	Users    UserBatch
	Log      *zap.Logger
}

func NewReviewHandler(r ReviewStore, m MeetingReader, u UserBatch, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{Reviews: r, Meetings: m, Users: u, Log: log}
}

const (
	recentReviews    = 5
	maxCommentLength = 2000

	defaultReviewPage = 10
	maxReviewPage     = 50
)

var (
	errNotCompleted    = apperr.New(apperr.StateError, "MEETING_NOT_COMPLETED", "only completed meetings can be reviewed")
	errAlreadyReviewed = apperr.New(apperr.Conflict, "ALREADY_REVIEWED", "meeting already reviewed")
	errNotYourMeeting  = apperr.New(apperr.Forbidden, "FORBIDDEN", "only the meeting's client can review it")
)

type reviewReq struct {
	MeetingID uint64 `json:"meeting_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Create stores the client's rating of one of their completed meetings.
func (h *ReviewHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Comment = strings.TrimSpace(req.Comment)
	switch {
	case req.MeetingID == 0:
		return badRequest(c, "meeting_id required")
	case req.Rating < 1 || req.Rating > 5:
		return badRequest(c, "rating must be between 1 and 5")
	case utf8.RuneCountInString(req.Comment) > maxCommentLength:
		return badRequest(c, "comment too long")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	m, err := h.Meetings.GetByID(ctx, req.MeetingID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if m.ClientID != actor.ID {
		return fail(c, h.Log, errNotYourMeeting)
	}
	if m.Status != model.StatusCompleted {
		return fail(c, h.Log, errNotCompleted)
	}
	rv := &model.Review{
		MeetingID: m.ID,
		LawyerID:  m.LawyerID,
		ClientID:  actor.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, h.Log, errAlreadyReviewed)
		}
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": rv.ID})
}

// Summary returns the lifetime average and the latest reviews of a lawyer.
func (h *ReviewHandler) Summary(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid lawyer id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	s, err := h.Reviews.Summary(ctx, id, recentReviews)
	if err != nil {
		return fail(c, h.Log, err)
	}
	items, err := h.reviewItems(ctx, s.Recent)
	if err != nil {
		return fail(c, h.Log, err)
	}
	sum := 0
	for _, rv := range s.Recent {
		sum += rv.Rating
	}
	recentAvg := 0.0
	if len(s.Recent) > 0 {
		recentAvg = float64(sum) / float64(len(s.Recent))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"lifetime": echo.Map{"avg": round2(s.Average), "count": s.Count},
		"last5":    echo.Map{"avg": round2(recentAvg), "count": len(items), "items": items},
	})
}

// List pages through a lawyer's reviews, newest first.  page defaults to
// 1 and per_page to 10, capped at 50.
func (h *ReviewHandler) List(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid lawyer id")
	}
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	perPage, ok := queryInt(c, "per_page", defaultReviewPage)
	if !ok {
		return badRequest(c, "invalid per_page")
	}
	page = max(page, 1)
	perPage = min(max(perPage, 1), maxReviewPage)

	ctx, cancel := requestCtx(c)
	defer cancel()
	reviews, total, err := h.Reviews.List(ctx, id, page, perPage)
	if err != nil {
		return fail(c, h.Log, err)
	}
	items, err := h.reviewItems(ctx, reviews)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":     page,
		"per_page": perPage,
		"total":    total,
		"items":    items,
	})
}

// reviewItems renders reviews for guests, naming each client by initial.
func (h *ReviewHandler) reviewItems(ctx context.Context, reviews []model.Review) ([]echo.Map, error) {
	ids := make([]uint64, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.ClientID)
	}
	clients, err := h.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]echo.Map, 0, len(reviews))
	for _, rv := range reviews {
		items = append(items, echo.Map{
			"rating":     rv.Rating,
			"comment":    rv.Comment,
			"created_at": rv.CreatedAt,
			"client":     reviewerName(clients[rv.ClientID]),
		})
	}
	return items, nil
}

// reviewerName shortens a client to "First L." and falls back to "Cliente".
func reviewerName(u model.User) string {
	first := strings.Fields(u.Nombres)
	last := strings.TrimSpace(u.Apellidos)
	if len(first) == 0 || last == "" {
		return "Cliente"
	}
	r, _ := utf8.DecodeRuneInString(last)
	return first[0] + " " + string(r) + "."
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
