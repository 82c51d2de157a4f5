package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/htmltopdf/internal/models"
	"github.com/Lllllllleong/htmltopdf/internal/services"
)

var (
	converterInstance *services.ConverterFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("ConvertHTMLToPDF", convertHTTP)
	functions.CloudEvent("ConvertHTMLToPDFEvent", convertEvent)
}

// main is required by the Go Functions Framework.
func main() {}

func converter() (*services.ConverterFunction, error) {
	once.Do(func() {
		converterInstance, initErr = services.NewConverter(context.Background())
	})
	return converterInstance, initErr
}

// convertHTTP decodes a PdfRequest body and always answers with a PdfResponse.
func convertHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := converter()
	if err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		writeResponse(w, http.StatusInternalServerError, models.NewFailureResponse("failed to initialize service: "+err.Error()))
		return
	}

	var req models.PdfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		writeResponse(w, http.StatusBadRequest, models.NewFailureResponse("could not parse request: "+err.Error()))
		return
	}

	writeResponse(w, http.StatusOK, c.Process(r.Context(), &req))
}

// convertEvent handles a Pub/Sub CloudEvent whose message data is a PdfRequest.
func convertEvent(ctx context.Context, e cloudevents.Event) error {
	c, err := converter()
	if err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		return err
	}

	var msg models.PubSubMessage
	if err := json.Unmarshal(e.Data(), &msg); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "eventId", e.ID())
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	var req models.PdfRequest
	if err := json.Unmarshal(msg.Message.Data, &req); err != nil {
		slog.Error("Failed to unmarshal PDF request", "error", err, "eventId", e.ID(), "messageId", msg.Message.MessageID)
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	res := c.Process(ctx, &req)
	slog.Info("Conversion finished.", "eventId", e.ID(), "success", res.Success, "messages", res.Messages)
	return nil
}

func writeResponse(w http.ResponseWriter, status int, res *models.PdfResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
