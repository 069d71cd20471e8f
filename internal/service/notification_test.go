package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"carshare/internal/domain"
	"carshare/internal/service"
)

func TestNotification_OverdueReport(t *testing.T) {
	t.Parallel()

	channel := &MockChannel{}
	svc := service.NewNotificationService(channel)
	ctx := context.Background()

	if err := svc.NotifyOverdueRentals(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rentals := []*domain.Rental{
		{ID: "r-1", OwnerID: "u-1", VehicleID: "v-1", PlannedReturnOn: domain.Day(day(2024, 1, 2))},
		{ID: "r-2", OwnerID: "u-2", VehicleID: "v-2", PlannedReturnOn: domain.Day(day(2024, 1, 3))},
	}
	if err := svc.NotifyOverdueRentals(ctx, rentals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := channel.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0] != "No rentals overdue today!" {
		t.Errorf("unexpected empty report: %q", msgs[0])
	}
	for _, want := range []string{"r-1", "r-2", "2024-01-02", "2024-01-03"} {
		if !strings.Contains(msgs[1], want) {
			t.Errorf("expected report to contain %q, got %q", want, msgs[1])
		}
	}
}

func TestNotification_ChannelErrorIsWrapped(t *testing.T) {
	t.Parallel()

	svc := service.NewNotificationService(&MockChannel{SendError: errBoom})

	err := svc.NotifyPaymentConfirmed(context.Background(), "r-1")
	if !errors.Is(err, errBoom) {
		t.Errorf("expected wrapped channel error, got %v", err)
	}
}
