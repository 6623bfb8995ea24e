package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweepy "github.com/alandotcom/sweepy"
	"github.com/alandotcom/sweepy/arcgis"
	"github.com/alandotcom/sweepy/holiday"
	"github.com/alandotcom/sweepy/route"
	"github.com/alandotcom/sweepy/testutil"
)

type sentLog struct {
	mu    sync.Mutex
	forms []url.Values
}

func (s *sentLog) add(form url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms = append(s.forms, form)
}

func (s *sentLog) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	texts := make([]string, len(s.forms))
	for i, form := range s.forms {
		texts[i] = form.Get("text")
	}
	return texts
}

func (s *sentLog) last() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.forms) == 0 {
		return url.Values{}
	}
	return s.forms[len(s.forms)-1]
}

func newMockTelegram(t *testing.T) (*tgbotapi.BotAPI, *sentLog) {
	t.Helper()

	sent := &sentLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()

		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Sweepy","username":"sweepy_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			sent.add(r.PostForm)
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":77}}}`)
		default:
			t.Errorf("unexpected telegram call %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("test-token", server.URL+"/bot%s/%s")
	require.NoError(t, err)

	return api, sent
}

func newTestBot(t *testing.T, geocoder *testutil.Geocoder, source *testutil.RouteSource) (*Bot, *sentLog) {
	t.Helper()

	api, sent := newMockTelegram(t)

	service, err := sweepy.NewService(geocoder, source, holiday.LosAngeles())
	require.NoError(t, err)
	service.Now = func() time.Time {
		// 20:00 UTC is midday in LA, same calendar date in both zones.
		return time.Date(2026, time.March, 2, 20, 0, 0, 0, time.UTC)
	}

	return &Bot{Service: service, api: api}, sent
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 77},
	}
}

func commandMessage(text string) *tgbotapi.Message {
	msg := textMessage(text)

	length := len(text)
	if i := strings.Index(text, " "); i >= 0 {
		length = i
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	return msg
}

func TestHelpCommand(t *testing.T) {
	for _, cmd := range []string{"/start", "/help"} {
		t.Run(cmd, func(t *testing.T) {
			b, sent := newTestBot(t, &testutil.Geocoder{}, &testutil.RouteSource{})

			b.handle(context.Background(), commandMessage(cmd))

			texts := sent.texts()
			require.Len(t, texts, 1)
			assert.Contains(t, texts[0], "LA Street Sweeping Bot")
			assert.Equal(t, "Markdown", sent.last().Get("parse_mode"))
			assert.Equal(t, "true", sent.last().Get("disable_web_page_preview"))
			assert.Equal(t, "77", sent.last().Get("chat_id"))
		})
	}
}

func TestSweepCommand(t *testing.T) {
	geocoder := &testutil.Geocoder{Place: testutil.SunsetPlacemark()}
	source := &testutil.RouteSource{Results: [][]route.Record{testutil.ValerioRecords()}}
	b, sent := newTestBot(t, geocoder, source)

	b.handle(context.Background(), commandMessage("/sweep 4370 Sunset Blvd"))

	require.Equal(t, []string{"4370 Sunset Blvd, Los Angeles, CA"}, geocoder.Addresses)

	texts := sent.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "🔍 Looking up your address...", texts[0])
	assert.Contains(t, texts[1], "📍 *4370 W Sunset Blvd, Los Angeles, California, 90029*")
	assert.Contains(t, texts[1], "🧹 *VALERIO ST*")
	assert.Contains(t, texts[1], "🔄 2nd & 4th")
	assert.Contains(t, texts[1], "Tue Mar 10")
	assert.Contains(t, texts[1], "[View on LA Map]("+sweepy.DashboardURL+")")
}

func TestSweepCommandNoArgs(t *testing.T) {
	b, sent := newTestBot(t, &testutil.Geocoder{}, &testutil.RouteSource{})

	b.handle(context.Background(), commandMessage("/sweep"))

	texts := sent.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Please provide an address.")
}

func TestLocationMessage(t *testing.T) {
	geocoder := &testutil.Geocoder{}
	source := &testutil.RouteSource{Results: [][]route.Record{testutil.ValerioRecords()}}
	b, sent := newTestBot(t, geocoder, source)

	msg := textMessage("")
	msg.Location = &tgbotapi.Location{Longitude: -118.25, Latitude: 34.05}
	b.handle(context.Background(), msg)

	assert.Empty(t, geocoder.Addresses)

	texts := sent.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "📍 *34.05000, -118.25000*")
	assert.Contains(t, texts[0], "🧹 *VALERIO ST*")
}

func TestTextMessageAddress(t *testing.T) {
	geocoder := &testutil.Geocoder{
		Place: &arcgis.Placemark{X: -118.25, Y: 34.05, Label: "123 Main St", Score: 90},
	}
	source := &testutil.RouteSource{Results: [][]route.Record{testutil.ValerioRecords()}}
	b, sent := newTestBot(t, geocoder, source)

	b.handle(context.Background(), textMessage("123 Main St"))

	require.Equal(t, []string{"123 Main St, Los Angeles, CA"}, geocoder.Addresses)

	texts := sent.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "🧹 *VALERIO ST*")
}

func TestTextMessageNoDigits(t *testing.T) {
	geocoder := &testutil.Geocoder{}
	b, sent := newTestBot(t, geocoder, &testutil.RouteSource{})

	b.handle(context.Background(), textMessage("hello there"))

	assert.Empty(t, geocoder.Addresses)

	texts := sent.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Send me a street address")
}

func TestAddressNotFound(t *testing.T) {
	geocoder := &testutil.Geocoder{Err: arcgis.ErrAddressNotFound}
	b, sent := newTestBot(t, geocoder, &testutil.RouteSource{})

	b.handle(context.Background(), commandMessage("/sweep 1 Nowhere Ave"))

	texts := sent.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "❌ "+sweepy.MsgAddressNotFound, texts[1])
}

func TestNoRoutes(t *testing.T) {
	geocoder := &testutil.Geocoder{
		Place: &arcgis.Placemark{X: -118.25, Y: 34.05, Label: "800 Remote Rd", Score: 92},
	}
	b, sent := newTestBot(t, geocoder, &testutil.RouteSource{})

	b.handle(context.Background(), commandMessage("/sweep 800 Remote Rd"))

	texts := sent.texts()
	require.Len(t, texts, 2)
	want := fmt.Sprintf("📍 *800 Remote Rd*\n\n%s\n\n[Check the map](%s)",
		sweepy.MsgNoRoutes, sweepy.DashboardURL)
	assert.Equal(t, want, texts[1])
}

func TestGeocoderDown(t *testing.T) {
	geocoder := &testutil.Geocoder{Err: errors.New("geocoder exploded")}
	b, sent := newTestBot(t, geocoder, &testutil.RouteSource{})

	b.handle(context.Background(), commandMessage("/sweep 123 Main St"))

	texts := sent.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "Something went wrong")
}
