package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/access-management/internal/core/events"
	"github.com/frahmantamala/access-management/internal/request"
	"github.com/frahmantamala/access-management/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the in-process event bus and its audit subscriber`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [submitted|reviewed]",
	Short: "Publish a sample request event",
	Long:  `Publish a sample access request event through the audit subscriber for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(args[0])
	},
}

var (
	eventRequestID int64
	eventUserID    int64
)

func publishSampleEvent(kind string) error {
	lg := logger.LoggerWrapper()

	bus := events.NewEventBus(lg)
	request.NewAuditHandler(lg).Register(bus)

	var event events.Event
	switch kind {
	case "submitted":
		event = events.NewRequestSubmittedEvent(eventRequestID, eventUserID, 1, "Read")
	case "reviewed":
		event = events.NewRequestReviewedEvent(eventRequestID, eventUserID, 0, string(request.StatusApproved))
	default:
		return fmt.Errorf("unknown event kind %q", kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bus.PublishSync(ctx, event); err != nil {
		return err
	}

	lg.Info("sample event published", "event_type", event.EventType(), "event_id", event.EventID())
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventRequestID, "request-id", 1, "request id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user-id", 1, "user id carried by the event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
