package main

type Settings struct {
	Port             int      `env:"PORT,default=8000"`
	BasePath         string   `env:"BASE_PATH,default=/notify"`
	JWTSecret        string   `env:"JWT_SECRET,required=true"`
	APIKeys          []string `env:"API_KEYS"`
	MongoURI         string   `env:"MONGODB_URI,default=mongodb://localhost:27017"`
	HeartbeatSeconds int      `env:"HEARTBEAT_SECONDS,default=30"`
	LogEncoding      string   `env:"LOG_ENCODING,default=console"`
}
