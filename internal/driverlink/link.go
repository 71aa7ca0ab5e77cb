// Package driverlink connects driver mobile clients over MQTT. Drivers
// publish status changes, fuel and toll logs and issue reports; the link
// applies them to the store and republishes every committed notification.
package driverlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dispatch/internal/fleet"
	"github.com/ukydev/fleet-dispatch/internal/models"
	"github.com/ukydev/fleet-dispatch/internal/store"
)

// Message kinds, the last topic segment.
const (
	KindStatus = "status"
	KindFuel   = "fuel"
	KindToll   = "toll"
	KindIssue  = "issue"
)

var ErrBadTopic = errors.New("unrecognised driver topic")

// Config configures the broker connection.
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
}

// Link routes driver messages into a store.
type Link struct {
	cfg   Config
	store *store.Store
	env   fleet.Env

	publish func(topic string, payload []byte)
}

// New creates a link. Run connects it.
func New(cfg Config, st *store.Store, env fleet.Env) *Link {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "fleet"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "fleet-dispatch"
	}
	cfg.TopicPrefix = strings.TrimSuffix(cfg.TopicPrefix, "/")
	return &Link{cfg: cfg, store: st, env: env, publish: func(string, []byte) {}}
}

// DriverTopic is the topic a driver publishes kind messages on.
func (l *Link) DriverTopic(driverID int, kind string) string {
	return fmt.Sprintf("%s/drivers/%d/%s", l.cfg.TopicPrefix, driverID, kind)
}

// NotificationsTopic is where committed notifications are republished.
func (l *Link) NotificationsTopic() string {
	return l.cfg.TopicPrefix + "/notifications"
}

// Run connects to the broker, subscribes and blocks until ctx is done.
func (l *Link) Run(ctx context.Context) error {
	filter := l.cfg.TopicPrefix + "/drivers/+/+"
	opts := mqtt.NewClientOptions().
		AddBroker(l.cfg.Broker).
		SetClientID(l.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("Driver link connection lost")
		})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(filter, l.cfg.QoS, func(_ mqtt.Client, m mqtt.Message) {
			if err := l.HandleMessage(m.Topic(), m.Payload()); err != nil {
				log.WithError(err).WithField("topic", m.Topic()).Warn("Driver message rejected")
			}
		})
		if token.WaitTimeout(10*time.Second) && token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", filter).Error("Failed to subscribe to driver topics")
			return
		}
		log.WithFields(log.Fields{"broker": l.cfg.Broker, "topic": filter}).Info("Driver link connected")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15*time.Second) {
		log.WithField("broker", l.cfg.Broker).Warn("Driver link still connecting, retrying in background")
	} else if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker %s: %w", l.cfg.Broker, err)
	}

	l.publish = func(topic string, payload []byte) {
		client.Publish(topic, l.cfg.QoS, false, payload)
	}
	unsubscribe := l.store.Subscribe(l.Forward)
	defer unsubscribe()

	<-ctx.Done()
	client.Disconnect(250)
	log.Info("Driver link disconnected")
	return nil
}

// Forward republishes notification events.
func (l *Link) Forward(ev store.Event) {
	if ev.Kind != store.EventNotification || ev.Notification == nil {
		return
	}
	payload, err := json.Marshal(ev.Notification)
	if err != nil {
		log.WithError(err).Error("Failed to encode notification")
		return
	}
	l.publish(l.NotificationsTopic(), payload)
}

func (l *Link) parseTopic(topic string) (int, string, error) {
	rest, ok := strings.CutPrefix(topic, l.cfg.TopicPrefix+"/drivers/")
	if !ok {
		return 0, "", ErrBadTopic
	}
	idPart, kind, ok := strings.Cut(rest, "/")
	if !ok || strings.Contains(kind, "/") {
		return 0, "", ErrBadTopic
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, "", ErrBadTopic
	}
	return id, kind, nil
}

type statusPayload struct {
	Status models.VehicleStatus `json:"status"`
}

// HandleMessage applies one driver message to the store.
func (l *Link) HandleMessage(topic string, payload []byte) error {
	driverID, kind, err := l.parseTopic(topic)
	if err != nil {
		return fmt.Errorf("%w: %s", err, topic)
	}

	var action string
	var reducer fleet.Reducer
	switch kind {
	case KindStatus:
		var p statusPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode status: %w", err)
		}
		action = "driver_status"
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			return fleet.DriverStatusChange(s, driverID, p.Status)
		}
	case KindFuel:
		var e models.FuelEntry
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("decode fuel entry: %w", err)
		}
		action = "driver_fuel"
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			return fleet.DriverLogFuel(s, driverID, e, l.env)
		}
	case KindToll:
		var e models.TollEntry
		if err := json.Unmarshal(payload, &e); err != nil {
			return fmt.Errorf("decode toll entry: %w", err)
		}
		action = "driver_toll"
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			return fleet.DriverLogToll(s, driverID, e, l.env)
		}
	case KindIssue:
		var in fleet.IssueReport
		if err := json.Unmarshal(payload, &in); err != nil {
			return fmt.Errorf("decode issue: %w", err)
		}
		action = "driver_issue"
		reducer = func(s fleet.State) (fleet.State, fleet.Effects, error) {
			return fleet.DriverReportIssue(s, driverID, in)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrBadTopic, kind)
	}

	_, err = l.store.Apply(action, reducer)
	return err
}
