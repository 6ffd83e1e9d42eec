package e2e

import (
	"bytes"
	"chat-relay/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Frame is an outbound frame as seen by a client.
type Frame struct {
	Event event.Name      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type BaseRelaySuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.client = &http.Client{Timeout: 10 * time.Second}
}

// Step prints a colorized header for a scenario step
func (s *BaseRelaySuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Dial opens a websocket session and returns it with the id from the connected frame
func (s *BaseRelaySuite) Dial() (*websocket.Conn, string) {
	url := "ws" + strings.TrimPrefix(s.Config.RelayURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err, "Failed to connect to relay at "+url)
	s.T().Cleanup(func() { _ = conn.Close() })

	connected := s.Read(conn)
	s.Require().Equal(event.Connected, connected.Event)
	var payload event.ConnectedPayload
	s.Require().NoError(json.Unmarshal(connected.Data, &payload))
	return conn, payload.ClientID
}

func (s *BaseRelaySuite) Send(conn *websocket.Conn, name event.Name, data any) {
	s.Require().NoError(conn.WriteJSON(map[string]any{"event": name, "data": data}))
}

// Read returns the next frame, failing after five seconds
func (s *BaseRelaySuite) Read(conn *websocket.Conn) Frame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	var f Frame
	s.Require().NoError(conn.ReadJSON(&f))
	if s.Config.DebugJSON {
		s.T().Logf("FRAME %s %s", f.Event, string(f.Data))
	}
	return f
}

// ReadUntil skips frames until one with the given event arrives
func (s *BaseRelaySuite) ReadUntil(conn *websocket.Conn, name event.Name) Frame {
	for {
		if f := s.Read(conn); f.Event == name {
			return f
		}
	}
}

// Call performs a JSON request against the relay and decodes the answer into out
func (s *BaseRelaySuite) Call(method, path string, body any, out any) int {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequest(method, s.Config.RelayURL+path, reader)
	s.Require().NoError(err)
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	response, err := s.client.Do(request)
	s.Require().NoError(err)
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	s.Require().NoError(err)
	s.T().Logf("HTTP %s %s [%d] in %v", method, path, response.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		s.T().Log(string(raw))
	}
	if out != nil {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return response.StatusCode
}

// WithHealth provides a gRPC health client within a contextual test step
func (s *BaseRelaySuite) WithHealth(name string, fn func(ctx context.Context, client grpc_health_v1.HealthClient)) {
	s.Step(name)
	conn, err := grpc.NewClient(s.Config.RelayHealthAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, grpc_health_v1.NewHealthClient(conn))
}
