package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/arnestad/hidwire-go/pkg/hid"
)

type MqttRelay struct {
	client   mqtt.Client
	clientId string
}

func (r *MqttRelay) Connect(clientId string, uri *url.URL) error {
	opts := mqtt.NewClientOptions()
	broker := fmt.Sprintf("tcp://%s", uri.Host)

	r.clientId = clientId
	log.Printf("Connecting to MQTT broker '%s' with id '%s'", broker, r.clientId)

	mqtt.ERROR = log.New(os.Stdout, "[ERROR] ", 0)
	mqtt.CRITICAL = log.New(os.Stdout, "[CRIT] ", 0)
	mqtt.WARN = log.New(os.Stdout, "[WARN]  ", 0)

	opts.AddBroker(broker).
		SetClientID(r.clientId).
		SetConnectRetry(true).
		SetOnConnectHandler(r.connected).
		SetConnectionLostHandler(r.connectionLost).
		SetKeepAlive(30 * time.Second).
		SetUsername(uri.User.Username())
	if password, set := uri.User.Password(); set {
		opts.SetPassword(password)
	}

	r.client = mqtt.NewClient(opts)
	t := r.client.Connect()
	go func() {
		<-t.Done()
		if t.Error() != nil {
			log.Println(t.Error())
		}
	}()

	return nil
}

func (r *MqttRelay) Close() {
	r.client.Disconnect(1000)
}

func (r *MqttRelay) connected(c mqtt.Client) {
	log.Println("Connected to broker")
}

func (r *MqttRelay) connectionLost(c mqtt.Client, err error) {
	log.Printf("Lost connection with broker: %s", err)
}

// Report publishes one input report, hex encoded.
func (r *MqttRelay) Report(data []byte) {
	r.publish(fmt.Sprintf("%s/report", r.clientId), hex.EncodeToString(data))
}

func (r *MqttRelay) publish(topic string, msg string) {
	t := r.client.Publish(topic, 1, false, msg)
	go func() {
		<-t.Done()
		if t.Error() != nil {
			log.Println(t.Error())
		}
	}()
}

// monitorReports pumps input reports from the device to the relay until
// the context ends or the device fails. The poll timeout bounds how
// long shutdown waits on a silent device.
func monitorReports(ctx context.Context, dev *hid.Device, relay *MqttRelay, maxLength, pollMs int) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			data, err := dev.ReadTimeout(maxLength, pollMs)
			if err != nil {
				if errors.Is(err, hid.ErrDeviceClosed) {
					return nil
				}
				return err
			}
			if len(data) == 0 {
				continue
			}
			relay.Report(data)
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		return dev.Close()
	})

	return g.Wait()
}
