package fake

import (
	"fmt"
	"math/rand"
)

// Generator produces random but plausibly shaped raw song and log
// records. The same seed regenerates the same records, which the tests
// and the datagen command rely on.
type Generator struct {
	rand *rand.Rand
}

// NewGenerator creates a Generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// Song is a generated catalog entry. Events generated from it carry a
// matching (title, artist, duration) triple.
type Song struct {
	ID        string
	Title     string
	ArtistID  string
	Artist    string
	Location  string
	Latitude  float64
	Longitude float64
	Duration  float64
	Year      int
}

var (
	titleWords = []string{"Midnight", "Golden", "Broken", "Silent", "Electric", "Paper", "Neon", "Hollow", "Winter", "Restless"}
	titleNouns = []string{"River", "Highway", "Letters", "Satellites", "Garden", "Static", "Horizon", "Parade", "Embers", "Tides"}
	artistA    = []string{"The", "Los", "Madame", "Doctor", "Saint"}
	artistB    = []string{"Volcanoes", "Cartographers", "Foxes", "Lanterns", "Operators", "Pilots", "Archivists"}
	locations  = []string{"Oakland, CA", "Brooklyn, NY", "Austin, TX", "Portland, OR", "Chicago, IL", "Nashville, TN"}
	firstNames = []string{"Lily", "Jacob", "Sylvie", "Marcus", "Tegan", "Noah", "Ava", "Elena"}
	lastNames  = []string{"Koch", "Klein", "Cruz", "Levine", "Barrera", "Fox", "Griffin", "Arellano"}
	userAgents = []string{
		`"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_4) AppleWebKit/537.36"`,
		`"Mozilla/5.0 (Windows NT 6.1; WOW64) Gecko/20100101 Firefox/31.0"`,
		`"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"`,
	}
	otherPages = []string{"Home", "Login", "Logout", "Settings", "Help"}
)

func (g *Generator) letters(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('A' + g.rand.Intn(26))
	}
	return string(b)
}

func (g *Generator) pick(vals []string) string {
	return vals[g.rand.Intn(len(vals))]
}

// Song generates a new catalog entry.
func (g *Generator) Song() Song {
	return Song{
		ID:        "SO" + g.letters(8),
		Title:     g.pick(titleWords) + " " + g.pick(titleNouns),
		ArtistID:  "AR" + g.letters(8),
		Artist:    g.pick(artistA) + " " + g.pick(artistB),
		Location:  g.pick(locations),
		Latitude:  g.rand.Float64()*180 - 90,
		Longitude: g.rand.Float64()*360 - 180,
		Duration:  50 + g.rand.Float64()*400,
		Year:      1960 + g.rand.Intn(60),
	}
}

// SongRecord renders s as a raw song-data JSON object.
func (g *Generator) SongRecord(s Song) map[string]interface{} {
	return map[string]interface{}{
		"num_songs":        1,
		"song_id":          s.ID,
		"title":            s.Title,
		"artist_id":        s.ArtistID,
		"artist_name":      s.Artist,
		"artist_location":  s.Location,
		"artist_latitude":  s.Latitude,
		"artist_longitude": s.Longitude,
		"duration":         s.Duration,
		"year":             s.Year,
	}
}

// NextSong generates a song-play event referencing s at the given
// timestamp.
func (g *Generator) NextSong(s Song, userID int, sessionID int, ts int64) map[string]interface{} {
	e := g.baseEvent(userID, sessionID, ts)
	e["page"] = "NextSong"
	e["song"] = s.Title
	e["artist"] = s.Artist
	e["length"] = s.Duration
	return e
}

// PageView generates a non-NextSong event, the noise the pipeline must
// filter out.
func (g *Generator) PageView(userID int, sessionID int, ts int64) map[string]interface{} {
	e := g.baseEvent(userID, sessionID, ts)
	e["page"] = g.pick(otherPages)
	e["song"] = nil
	e["artist"] = nil
	e["length"] = nil
	return e
}

func (g *Generator) baseEvent(userID int, sessionID int, ts int64) map[string]interface{} {
	gender := "F"
	if g.rand.Intn(2) == 0 {
		gender = "M"
	}
	level := "free"
	if g.rand.Intn(4) == 0 {
		level = "paid"
	}
	return map[string]interface{}{
		"auth":          "Logged In",
		"firstName":     firstNames[userID%len(firstNames)],
		"lastName":      lastNames[userID%len(lastNames)],
		"gender":        gender,
		"itemInSession": g.rand.Intn(20),
		"level":         level,
		"location":      g.pick(locations),
		"method":        "PUT",
		"registration":  float64(ts - int64(g.rand.Intn(1e9))),
		"sessionId":     sessionID,
		"status":        200,
		"ts":            ts,
		"userAgent":     g.pick(userAgents),
		"userId":        fmt.Sprintf("%d", userID),
	}
}
