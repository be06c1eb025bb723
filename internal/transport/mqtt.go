package transport

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"door_controller/internal/logger"
	"door_controller/internal/models"
)

// Topic suffixes under the configured prefix. The chat gateway on the other
// side of the broker maps these to the user-facing conversation.
const (
	topicCommand  = "command"  // inbound text commands
	topicCallback = "callback" // inbound button presses
	topicReply    = "reply"    // outbound text
	topicMenu     = "menu"     // outbound interactive menu
	topicAck      = "ack"      // outbound callback acknowledgments
	topicStatus   = "status"   // availability (retained, LWT "offline")
)

// eventBuffer bounds the inbound queue; a handful of users cannot fill it,
// and overflow drops the newest event rather than blocking the paho handler.
const eventBuffer = 32

type commandPayload struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Text     string `json:"text"`
}

type callbackPayload struct {
	UserID     int64  `json:"user_id"`
	UserName   string `json:"user_name"`
	Data       string `json:"data"`
	CallbackID string `json:"callback_id"`
}

type replyPayload struct {
	Text     string `json:"text"`
	Markdown bool   `json:"markdown,omitempty"`
}

type menuPayload struct {
	Text    string            `json:"text"`
	Buttons [][]models.Button `json:"buttons"`
}

type ackPayload struct {
	CallbackID string `json:"callback_id"`
	Text       string `json:"text"`
}

// MQTTChannel bridges the chat conversation over an MQTT broker. Message
// handlers run on paho goroutines and only enqueue; the control loop drains
// via Poll on its own schedule.
type MQTTChannel struct {
	client mqtt.Client
	prefix string
	events chan models.CommandEvent
	log    *logger.Logger
}

// MQTTConfig is the broker side of the channel; User/Token come from the
// provisioned DeviceConfig, the rest from configs/config.yml.
type MQTTConfig struct {
	Broker   string
	ClientID string
	User     string
	Token    string
	Prefix   string
}

func NewMQTTChannel(cfg MQTTConfig, log *logger.Logger) *MQTTChannel {
	ch := &MQTTChannel{
		prefix: cfg.Prefix,
		events: make(chan models.CommandEvent, eventBuffer),
		log:    log,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Token)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetWill(ch.topic(topicStatus), "offline", 0, true)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if log != nil {
			log.Infow("mqtt_connected", "broker", cfg.Broker)
		}
		c.Publish(ch.topic(topicStatus), 0, true, "online")
		c.Subscribe(ch.topic(topicCommand), 0, ch.handleCommand)
		c.Subscribe(ch.topic(topicCallback), 0, ch.handleCallback)
	})

	ch.client = mqtt.NewClient(opts)
	return ch
}

// Connect dials the broker. Failure is not fatal to the controller; the
// loop keeps running with MessagingOK down and paho retries in background.
func (ch *MQTTChannel) Connect() error {
	if token := ch.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

// Disconnect publishes the offline status and closes the client.
func (ch *MQTTChannel) Disconnect() {
	if ch.client.IsConnectionOpen() {
		ch.client.Publish(ch.topic(topicStatus), 0, true, "offline").Wait()
	}
	ch.client.Disconnect(250)
}

func (ch *MQTTChannel) topic(suffix string) string {
	return ch.prefix + "/" + suffix
}

func (ch *MQTTChannel) handleCommand(_ mqtt.Client, msg mqtt.Message) {
	var p commandPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		if ch.log != nil {
			ch.log.Warnw("mqtt_bad_command_payload", "err", err)
		}
		return
	}
	ch.enqueue(models.CommandEvent{
		Origin:   models.OriginRemoteText,
		UserID:   p.UserID,
		UserName: p.UserName,
		Payload:  p.Text,
	})
}

func (ch *MQTTChannel) handleCallback(_ mqtt.Client, msg mqtt.Message) {
	var p callbackPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		if ch.log != nil {
			ch.log.Warnw("mqtt_bad_callback_payload", "err", err)
		}
		return
	}
	ch.enqueue(models.CommandEvent{
		Origin:     models.OriginRemoteCallback,
		UserID:     p.UserID,
		UserName:   p.UserName,
		Payload:    p.Data,
		CallbackID: p.CallbackID,
	})
}

func (ch *MQTTChannel) enqueue(ev models.CommandEvent) {
	select {
	case ch.events <- ev:
	default:
		if ch.log != nil {
			ch.log.Warnw("mqtt_event_dropped", "origin", ev.Origin, "user_id", ev.UserID)
		}
	}
}

// Poll drains the queued events without blocking.
func (ch *MQTTChannel) Poll() []models.CommandEvent {
	var out []models.CommandEvent
	for {
		select {
		case ev := <-ch.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Connected reports the live broker link; the loop mirrors it into the
// messaging connectivity flag each iteration.
func (ch *MQTTChannel) Connected() bool {
	return ch.client.IsConnectionOpen()
}

func (ch *MQTTChannel) SendText(text string, markdown bool) error {
	return ch.publishJSON(topicReply, replyPayload{Text: text, Markdown: markdown})
}

func (ch *MQTTChannel) SendMenu(text string, buttons [][]models.Button) error {
	return ch.publishJSON(topicMenu, menuPayload{Text: text, Buttons: buttons})
}

func (ch *MQTTChannel) AckCallback(callbackID, text string) error {
	return ch.publishJSON(topicAck, ackPayload{CallbackID: callbackID, Text: text})
}

func (ch *MQTTChannel) publishJSON(suffix string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", suffix, err)
	}
	token := ch.client.Publish(ch.topic(suffix), 0, false, b)
	token.Wait()
	return token.Error()
}

var _ Channel = (*MQTTChannel)(nil)
