// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/LeeDigitalWorks/lockchime/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/xdg-go/scram"
)

// KafkaPublisher publishes events to Kafka. The sound id is the message
// key, so one sound's events stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher creates a sync producer for cfg.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultConfig().Kafka.Topic
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("kafka producer creation failed: %w", err)
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("compression", cfg.Compression).
		Int("required_acks", cfg.RequiredAcks).
		Msg("kafka event publisher connected")

	return &KafkaPublisher{producer: producer, topic: cfg.Topic}, nil
}

func saramaConfig(cfg KafkaConfig) *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Partitioner = sarama.NewHashPartitioner

	switch cfg.RequiredAcks {
	case 0:
		config.Producer.RequiredAcks = sarama.NoResponse
	case -1:
		config.Producer.RequiredAcks = sarama.WaitForAll
	default:
		config.Producer.RequiredAcks = sarama.WaitForLocal
	}

	switch cfg.Compression {
	case "gzip":
		config.Producer.Compression = sarama.CompressionGZIP
	case "lz4":
		config.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		config.Producer.Compression = sarama.CompressionZSTD
	case "none", "":
		config.Producer.Compression = sarama.CompressionNone
	default:
		config.Producer.Compression = sarama.CompressionSnappy
	}

	if cfg.BatchSize > 0 {
		config.Producer.Flush.MaxMessages = cfg.BatchSize
	}
	if cfg.BatchTimeout > 0 {
		config.Producer.Flush.Frequency = cfg.BatchTimeout
	}
	if cfg.WriteTimeout > 0 {
		config.Producer.Timeout = cfg.WriteTimeout
		config.Net.WriteTimeout = cfg.WriteTimeout
		config.Net.ReadTimeout = cfg.WriteTimeout
	}

	if cfg.TLS {
		config.Net.TLS.Enable = true
		config.Net.TLS.Config = &tls.Config{InsecureSkipVerify: cfg.TLSSkipVerify}
	}

	if cfg.SASLMechanism != "" {
		config.Net.SASL.Enable = true
		config.Net.SASL.User = cfg.SASLUsername
		config.Net.SASL.Password = cfg.SASLPassword

		switch cfg.SASLMechanism {
		case "SCRAM-SHA-256":
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
			config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return &scramClient{hash: scram.SHA256}
			}
		case "SCRAM-SHA-512":
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
			config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
				return &scramClient{hash: scram.SHA512}
			}
		default:
			config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		}
	}
	return config
}

// Name returns the publisher identifier.
func (p *KafkaPublisher) Name() string {
	return "kafka"
}

// Publish sends one event. sarama's sync producer has no context support;
// the producer timeout bounds the call instead.
func (p *KafkaPublisher) Publish(_ context.Context, soundID string, data []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(soundID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}

	logger.Debug().
		Str("topic", p.topic).
		Str("sound", soundID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("published event to kafka")
	return nil
}

// Close closes the producer.
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// scramClient adapts xdg-go/scram to sarama.SCRAMClient.
type scramClient struct {
	hash         scram.HashGeneratorFcn
	conversation *scram.ClientConversation
}

func (c *scramClient) Begin(userName, password, authzID string) error {
	client, err := c.hash.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	c.conversation = client.NewConversation()
	return nil
}

func (c *scramClient) Step(challenge string) (string, error) {
	return c.conversation.Step(challenge)
}

func (c *scramClient) Done() bool {
	return c.conversation.Done()
}
