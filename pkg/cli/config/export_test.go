package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewStoreForTest creates a Store config for testing purposes
func NewStoreForTest(backend, localDir, projectID string) *Store {
	return &Store{
		backend:    backend,
		localDir:   localDir,
		projectID:  projectID,
		collection: "memories",
	}
}

// NewEmbedderForTest creates an Embedder config for testing purposes
func NewEmbedderForTest(provider, hfToken string, g *Gemini) *Embedder {
	e := &Embedder{
		provider:   provider,
		hfToken:    hfToken,
		hfEndpoint: "http://127.0.0.1:0",
	}
	if g != nil {
		e.gemini = *g
	}
	return e
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewEngineForTest creates an Engine config for testing purposes
func NewEngineForTest(path string) *Engine {
	return &Engine{path: path}
}
