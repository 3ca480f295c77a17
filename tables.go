package lake

import "sort"

// Tables holds the five derived analytics tables, grouped by partition
// the way the writer lays them out on storage.
type Tables struct {
	Songs     map[SongPartition][]SongRow
	Artists   []ArtistRow
	Users     []UserRow
	Time      map[MonthPartition][]TimeRow
	Songplays map[MonthPartition][]SongplayRow
}

// BuildTables runs the full derivation: the song catalog is projected
// into the songs and artists dimensions, the NextSong subset of the
// event log into users and time, and the fact table is built by
// resolving each event against the catalog.
func BuildTables(songs []*SongRecord, events []*LogEvent) *Tables {
	plays := FilterNextSong(events)
	return &Tables{
		Songs:     BuildSongs(songs),
		Artists:   BuildArtists(songs),
		Users:     BuildUsers(plays),
		Time:      BuildTime(plays),
		Songplays: BuildSongplays(songs, plays),
	}
}

// FilterNextSong keeps only the events which represent song plays. All
// downstream log-derived tables are computed from this subset.
func FilterNextSong(events []*LogEvent) []*LogEvent {
	var plays []*LogEvent
	for _, e := range events {
		if e.IsNextSong() {
			plays = append(plays, e)
		}
	}
	return plays
}

// BuildSongs projects the song catalog into the songs dimension, one row
// per distinct song_id, partitioned by (year, artist_id). When an id
// appears more than once, the record latest in input order wins.
func BuildSongs(recs []*SongRecord) map[SongPartition][]SongRow {
	keep := dedupeSongs(recs)
	ids := sortedKeys(keep)
	out := make(map[SongPartition][]SongRow)
	for _, id := range ids {
		r := keep[id]
		p := SongPartition{Year: r.Year, ArtistID: r.ArtistID}
		out[p] = append(out[p], SongRow{
			SongID:   r.SongID,
			Title:    r.Title,
			Duration: r.Duration,
		})
	}
	return out
}

// BuildArtists projects the song catalog into the artists dimension, one
// row per distinct artist_id, with the same duplicate policy as
// BuildSongs.
func BuildArtists(recs []*SongRecord) []ArtistRow {
	keep := dedupeArtists(recs)
	ids := sortedKeys(keep)
	out := make([]ArtistRow, 0, len(ids))
	for _, id := range ids {
		r := keep[id]
		out = append(out, ArtistRow{
			ArtistID:  r.ArtistID,
			Name:      r.ArtistName,
			Location:  r.ArtistLocation,
			Latitude:  r.ArtistLatitude,
			Longitude: r.ArtistLongitude,
		})
	}
	return out
}

// BuildUsers derives the users dimension from the NextSong events, one
// row per distinct user_id holding the latest known state: the event
// with the greatest ts wins, input order breaking exact ties.
func BuildUsers(plays []*LogEvent) []UserRow {
	keep := make(map[string]*LogEvent)
	for _, e := range plays {
		prev, ok := keep[e.UserID]
		if !ok || prev.TS < e.TS || (prev.TS == e.TS && prev.before(e)) {
			keep[e.UserID] = e
		}
	}
	ids := sortedKeys(keep)
	out := make([]UserRow, 0, len(ids))
	for _, id := range ids {
		e := keep[id]
		out = append(out, UserRow{
			UserID:    e.UserID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Gender:    e.Gender,
			Level:     e.Level,
		})
	}
	return out
}

// BuildTime derives the time dimension from the NextSong events, one row
// per distinct start_time, partitioned by (year, month). Every column is
// a pure function of the timestamp, so duplicates are identical and any
// one of them is kept.
func BuildTime(plays []*LogEvent) map[MonthPartition][]TimeRow {
	seen := make(map[int64]bool)
	ts := make([]int64, 0, len(plays))
	for _, e := range plays {
		if !seen[e.TS] {
			seen[e.TS] = true
			ts = append(ts, e.TS)
		}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	out := make(map[MonthPartition][]TimeRow)
	for _, t := range ts {
		parts := DecomposeTime(timeFromMillis(t))
		p := MonthPartition{Year: parts.Year, Month: parts.Month}
		out[p] = append(out[p], TimeRow{
			StartTime: t,
			Hour:      parts.Hour,
			Day:       parts.Day,
			Week:      parts.Week,
			Weekday:   parts.Weekday,
		})
	}
	return out
}

// BuildSongplays builds the fact table, one row per NextSong event,
// partitioned by the (year, month) of the event timestamp. Song and
// artist ids are resolved by exact match of the event's (song, artist,
// length) against the (title, name, duration) triples of the deduplicated
// songs and artists dimensions; events with no match keep nil ids rather
// than being dropped. Ids are assigned per partition in event order.
func BuildSongplays(recs []*SongRecord, plays []*LogEvent) map[MonthPartition][]SongplayRow {
	lookup := buildTrackLookup(recs)

	ordered := append([]*LogEvent(nil), plays...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].before(ordered[j]) })

	nexter := NewPartitionNexter()
	out := make(map[MonthPartition][]SongplayRow)
	for _, e := range ordered {
		parts := DecomposeTime(e.StartTime())
		p := MonthPartition{Year: parts.Year, Month: parts.Month}
		row := SongplayRow{
			SongplayID: int64(nexter.Next(p.Prefix())),
			StartTime:  e.TS,
			UserID:     e.UserID,
			Level:      e.Level,
			SessionID:  e.SessionID,
			Location:   e.Location,
			UserAgent:  e.UserAgent,
		}
		if m, ok := lookup[trackKey{e.Song, e.Artist, e.Length}]; ok {
			songID, artistID := m.songID, m.artistID
			row.SongID, row.ArtistID = &songID, &artistID
		}
		out[p] = append(out[p], row)
	}
	return out
}

type trackKey struct {
	title    string
	artist   string
	duration float64
}

type trackMatch struct {
	songID   string
	artistID string
}

// buildTrackLookup joins the deduplicated songs and artists dimensions
// into a (title, artist name, duration) → ids lookup. If two distinct
// song ids share a triple, the smaller id wins.
func buildTrackLookup(recs []*SongRecord) map[trackKey]trackMatch {
	songs := dedupeSongs(recs)
	artists := dedupeArtists(recs)
	lookup := make(map[trackKey]trackMatch)
	for _, id := range sortedKeys(songs) {
		s := songs[id]
		a, ok := artists[s.ArtistID]
		if !ok {
			continue
		}
		k := trackKey{s.Title, a.ArtistName, s.Duration}
		if _, ok := lookup[k]; !ok {
			lookup[k] = trackMatch{songID: s.SongID, artistID: s.ArtistID}
		}
	}
	return lookup
}

func dedupeSongs(recs []*SongRecord) map[string]*SongRecord {
	keep := make(map[string]*SongRecord)
	for _, r := range recs {
		if prev, ok := keep[r.SongID]; !ok || prev.before(r) {
			keep[r.SongID] = r
		}
	}
	return keep
}

func dedupeArtists(recs []*SongRecord) map[string]*SongRecord {
	keep := make(map[string]*SongRecord)
	for _, r := range recs {
		if prev, ok := keep[r.ArtistID]; !ok || prev.before(r) {
			keep[r.ArtistID] = r
		}
	}
	return keep
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rowCount[P comparable, R any](m map[P][]R) int {
	n := 0
	for _, rows := range m {
		n += len(rows)
	}
	return n
}
