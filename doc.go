// Package lake implements the Sparkify batch ELT job: it reads raw JSON
// song-catalog files and line-separated JSON event logs from object
// storage or a local directory, reshapes them into a star schema of five
// analytics tables, and writes each table back as partitioned parquet.
//
// The job is one linear pass built from a few small pieces:
//
// 1. Source
//
//    A lake.Source hands back raw JSON records one at a time, regardless
//    of where they live - an S3 prefix, a directory tree, a reader in a
//    test. Each record remembers the object it came from and its position
//    within it, which is what lets the table builders resolve duplicate
//    keys the same way on every run.
//
// 2. Table builders
//
//    BuildTables projects the song catalog into the songs and artists
//    dimensions, the NextSong subset of the event log into the users and
//    time dimensions, and joins events against the catalog to produce the
//    songplays fact table. Events that match no catalog entry keep null
//    song and artist ids; no event is dropped.
//
// 3. Writer and Sink
//
//    The Writer encodes each table as snappy parquet, one file per
//    partition directory (songs by year/artist_id, time and songplays by
//    year/month), and hands the files to a Sink - S3 or the local
//    filesystem. A run replaces each table's prefix entirely; by default
//    the five tables are staged and published together so a mid-run
//    failure cannot leave a half-updated lake.
//
// Everything is recomputed from scratch on every run. There is no
// incremental state, no retry logic, and no schema validation: malformed
// fields surface as nulls, storage errors abort the run.
package lake
