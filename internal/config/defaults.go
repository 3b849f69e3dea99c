package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.TableName == "" {
		cfg.Store.TableName = "document_chunks"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "data/grabhack.db"
	}
	if cfg.Store.IVFFlatLists == 0 {
		cfg.Store.IVFFlatLists = 100
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "bedrock"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaultEmbeddingModel(cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 1024
	}
	if cfg.Embedding.MaxInputChars == 0 {
		cfg.Embedding.MaxInputChars = 2000
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = cfg.Embedding.Provider
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = defaultGenerationModel(cfg.Generation.Provider)
	}
	if cfg.Generation.AnswerTemperature == 0 {
		cfg.Generation.AnswerTemperature = 0.7
	}
	if cfg.Generation.AnswerMaxTokens == 0 {
		cfg.Generation.AnswerMaxTokens = 1024
	}
	if cfg.Retrieval.SimilarityLimit == 0 {
		cfg.Retrieval.SimilarityLimit = 15
	}
	if cfg.Retrieval.MaxContextChars == 0 {
		cfg.Retrieval.MaxContextChars = 30000
	}
	if cfg.Ingest.Root == "" {
		cfg.Ingest.Root = "datasets"
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".txt", ".md", ".log", ".json", ".csv"}
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 4
	}
	if cfg.Ingest.MaxContentChars == 0 {
		cfg.Ingest.MaxContentChars = 2000
	}
	if cfg.Providers.Bedrock.Region == "" {
		cfg.Providers.Bedrock.Region = "us-east-1"
	}
	if cfg.Providers.Bedrock.RequestsPerSecond == 0 {
		cfg.Providers.Bedrock.RequestsPerSecond = 5
	}
	if cfg.Providers.Bedrock.Burst == 0 {
		cfg.Providers.Bedrock.Burst = 5
	}
	if cfg.Providers.OpenAI.BaseURL == "" {
		cfg.Providers.OpenAI.BaseURL = "https://api.openai.com"
	}
	if cfg.Providers.OpenAI.TimeoutSeconds == 0 {
		cfg.Providers.OpenAI.TimeoutSeconds = 30
	}
	if cfg.Providers.OpenAI.RequestsPerSecond == 0 {
		cfg.Providers.OpenAI.RequestsPerSecond = 5
	}
	if cfg.Providers.OpenAI.Burst == 0 {
		cfg.Providers.OpenAI.Burst = 5
	}
}

func defaultEmbeddingModel(provider string) string {
	switch provider {
	case "openai":
		return "text-embedding-3-small"
	case "mock":
		return "mock"
	default:
		return "amazon.titan-embed-text-v2:0"
	}
}

func defaultGenerationModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "mock":
		return "mock"
	default:
		return "anthropic.claude-3-5-sonnet-20240620-v1:0"
	}
}
