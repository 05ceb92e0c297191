package kafka

import (
	"EventGallery/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

const clientID = "event-gallery"

func baseSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = clientID
	c.Metadata.Retry.Max = 5
	c.Metadata.Retry.Backoff = 500 * time.Millisecond

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}
	return c
}

// newProducerConfig 同步发送，按上传者名哈希分区
func newProducerConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := baseSaramaConfig(kafkaCfg)
	c.Producer.Return.Successes = true
	c.Producer.Return.Errors = true
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Idempotent = true
	c.Net.MaxOpenRequests = 1
	c.Producer.Retry.Max = 3
	c.Producer.Partitioner = sarama.NewHashPartitioner
	c.Producer.Compression = sarama.CompressionSnappy
	c.Version = sarama.V2_1_0_0
	return c
}

// newConsumerConfig 位点由 batchConsumer 在整批完成后标记，后台定时提交
func newConsumerConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := baseSaramaConfig(kafkaCfg)
	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetOldest
	c.Consumer.Offsets.AutoCommit.Enable = true
	c.Consumer.Offsets.AutoCommit.Interval = time.Second

	secs := func(n int) time.Duration { return time.Duration(n) * time.Second }
	c.Consumer.Group.Session.Timeout = secs(kafkaCfg.Consumer.SessionTimeout)
	c.Consumer.Group.Heartbeat.Interval = secs(kafkaCfg.Consumer.HeartbeatInterval)
	c.Consumer.Group.Rebalance.Timeout = secs(kafkaCfg.Consumer.RebalanceTimeout)
	c.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	c.Consumer.MaxProcessingTime = secs(kafkaCfg.Consumer.MaxProcessingTime)
	return c
}
