package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/nlp"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Interaction kinds accepted by the widget.
const (
	InteractionText = "text"
	InteractionRule = "rule"
)

// ShowFormNode is the reserved rule identifier that returns the lead form
// prompt without a storage lookup.
const ShowFormNode = "show_form"

// FallbackAnswer is returned when no FAQ clears the confidence threshold.
// A miss is a conversational reply, not an error.
const FallbackAnswer = "I'm sorry, I don't have a confident answer for that. You can try rephrasing, or contact our support team."

// InteractHandler serves the widget's conversational endpoint.
type InteractHandler struct {
	matcher *nlp.Matcher
}

// NewInteractHandler creates the handler around the matching engine.
func NewInteractHandler(matcher *nlp.Matcher) *InteractHandler {
	return &InteractHandler{matcher: matcher}
}

type interactRequest struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// Interact handles POST /api/v1/interact. Every accepted interaction is
// recorded as an analytics event before dispatch, so a failed dispatch still
// counts as one interaction. Text interactions go through the FAQ matcher;
// rule interactions look up a guided-flow node.
func (h *InteractHandler) Interact(c echo.Context) error {
	log := logger.FromEcho(c)

	var req interactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Type == "" {
		req.Type = InteractionText
	}

	if req.Payload == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"answer": "No input received."})
	}

	tenant := tenantctx.Tenant(c)
	partition := tenantctx.Partition(c)
	tenantLabel := "none"
	if tenant != nil {
		tenantLabel = tenant.Identifier
	}
	metrics.InteractionCounter.WithLabelValues(tenantLabel, req.Type).Inc()

	// Log before dispatching: this is the canonical usage count behind the
	// dashboard summary.
	if partition != nil {
		details, _ := json.Marshal(model.InteractionDetail{Message: req.Payload})
		logEntry := model.AnalyticsLog{
			EventType: "interaction_" + req.Type,
			Details:   string(details),
		}
		if err := partition.AppendLog(c.Request().Context(), &logEntry); err != nil {
			log.Error("failed to record interaction", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}

	switch req.Type {
	case InteractionText:
		return h.interactText(c, tenantLabel, req.Payload)
	case InteractionRule:
		return h.interactRule(c, req.Payload)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown interaction type"})
	}
}

func (h *InteractHandler) interactText(c echo.Context, tenantLabel, question string) error {
	log := logger.FromEcho(c)
	partition := tenantctx.Partition(c)

	var best *model.FAQ
	if partition != nil {
		var err error
		best, err = h.matcher.FindBestMatch(c.Request().Context(), partition, question)
		if err != nil {
			log.Error("faq matching failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}

	if best == nil {
		metrics.MatchCounter.WithLabelValues(tenantLabel, "fallback").Inc()
		return c.JSON(http.StatusOK, echo.Map{
			"question": "Not Found",
			"answer":   FallbackAnswer,
		})
	}

	metrics.MatchCounter.WithLabelValues(tenantLabel, "matched").Inc()

	if best.ResponseType == model.ResponseTypeRich {
		if !json.Valid([]byte(best.RichResponse)) {
			log.Error("stored rich response is not valid JSON", zap.Uint("faq_id", best.ID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"answer": "Error: Chatbot configuration is invalid."})
		}
		return c.JSONBlob(http.StatusOK, []byte(best.RichResponse))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"question": best.Question,
		"answer":   best.Answer,
	})
}

func (h *InteractHandler) interactRule(c echo.Context, nodeID string) error {
	log := logger.FromEcho(c)

	// The lead-form redirect is fixed behavior, not tenant configuration.
	if nodeID == ShowFormNode {
		return c.JSON(http.StatusOK, echo.Map{
			"type":    "show_form",
			"message": "Please fill out the form below and our team will get back to you.",
		})
	}

	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"answer": "Sorry, that option is not valid."})
	}

	rule, err := partition.RuleByNodeID(c.Request().Context(), nodeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"answer": "Sorry, that option is not valid."})
		}
		log.Error("rule lookup failed", zap.String("node_id", nodeID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	if !json.Valid([]byte(rule.RuleData)) {
		log.Error("stored rule data is not valid JSON", zap.String("node_id", nodeID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"answer": "Error: Chatbot configuration is invalid."})
	}

	return c.JSONBlob(http.StatusOK, []byte(rule.RuleData))
}
