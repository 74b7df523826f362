package gateway

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// logNotifier is the default notification sink: it writes deliveries to the
// application log. Real deployments swap in the ERP's mail gateway.
type logNotifier struct{}

func NewLogNotifier() NotificationSink {
	return &logNotifier{}
}

func (n *logNotifier) Notify(_ context.Context, employeeID uuid.UUID, subject, message string) error {
	log.Printf("notify employee=%s subject=%q: %s", employeeID, subject, message)
	return nil
}
