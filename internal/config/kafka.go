package config

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"ecom"`
	// Group is only used by the event consumer.
	Group string `env:"KAFKA_GROUP" envDefault:"ecom-events"`
}
