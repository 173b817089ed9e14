package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core"
	"github.com/trezcool/ustawi/core/sentiment"
)

type (
	SentimentRequest struct {
		StudentID string `json:"student_id"`
		Text      string `json:"text" validate:"required"`
	}

	SentimentResponse struct {
		Score    float64         `json:"sentiment_score"`
		Label    sentiment.Label `json:"sentiment_label"`
		Recorded bool            `json:"recorded"`
	}

	sentimentApi struct {
		repo     sentiment.Repository
		validate *validator.Validate
	}
)

func (r *SentimentRequest) Validate(validate *validator.Validate) error {
	r.StudentID = core.CleanString(r.StudentID)
	r.Text = core.CleanString(r.Text)
	return validate.Struct(r)
}

func registerSentimentAPI(g *echo.Group, repo sentiment.Repository, validate *validator.Validate) {
	api := sentimentApi{
		repo:     repo,
		validate: validate,
	}

	g.POST("/sentiment", api.score)
}

// score runs the lexicon scorer on the submitted text. When a student is
// given, the reading is also recorded as an event feeding future BRI runs.
func (api *sentimentApi) score(ctx echo.Context) error {
	var data SentimentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SentimentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	score, label := sentiment.Score(data.Text)
	res := SentimentResponse{Score: score, Label: label}

	if data.StudentID != "" {
		evt := sentiment.Event{
			StudentID: data.StudentID,
			Text:      data.Text,
			Score:     score,
			Label:     label,
		}
		if _, err := api.repo.CreateEvent(ctx.Request().Context(), evt); err != nil {
			return errors.Wrap(err, "recording sentiment event")
		}
		res.Recorded = true
	}
	return ctx.JSON(http.StatusOK, res)
}
