package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartReservationConsumer connects to RabbitMQ, declares the
// reservation.confirmed and reservation.released queues (durable), and
// starts consuming both. Each message is appended to
// logs/reservation.log in a single-line, human-friendly format. The
// function runs a reconnect loop; it keeps running and logs any
// processing errors while rejecting the offending message so the server
// continues operating.
func StartReservationConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("reservation-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("reservation-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("reservation-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{ConfirmedQueueName, ReleasedQueueName} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	confirmed, err := ch.Consume(ConfirmedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", ConfirmedQueueName, err)
	}
	released, err := ch.Consume(ReleasedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume %s: %w", ReleasedQueueName, err)
	}

	for {
		var (
			d  amqp.Delivery
			ok bool
			fn func([]byte) error
		)
		select {
		case d, ok = <-confirmed:
			fn = handleConfirmed
		case d, ok = <-released:
			fn = handleReleased
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := fn(d.Body); err != nil {
			log.Printf("reservation-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func handleConfirmed(body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Reservation confirmed | reservation_id=%d | code=%s | user_id=%d | event_id=%d | event=\"%s\" | seat=%d (%s) | status=%s | contact=%s\n",
		ev.ConfirmedAt, ev.ReservationID, ev.ConfirmationCode, ev.UserID, ev.EventID, ev.EventName, ev.SeatNumber, ev.RowLabel, ev.Status, ev.ManagerEmail)
	return appendLog(line)
}

func handleReleased(body []byte) error {
	var ev ReservationReleasedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Reservation released | reservation_id=%d | user_id=%d | event_id=%d | seat_id=%d | status=%s | remaining=%d\n",
		ev.ReleasedAt, ev.ReservationID, ev.UserID, ev.EventID, ev.SeatID, ev.Status, ev.RemainingCount)
	return appendLog(line)
}

func appendLog(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "reservation.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
