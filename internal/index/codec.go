package index

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"

	apperrors "github.com/onslaught7/RAG-Systems-BootDev/pkg/errors"
)

// MagicBytes identifies a valid .msx index artifact.
const (
	MagicBytes    uint32 = 0x4D535831 // "MSX1"
	FormatVersion uint32 = 1
	HeaderSize    int    = 24

	postingsFileName = "index.msx"
	docmapFileName   = "docmap.msx"
)

// termEntry is the serialised form of one token's posting set.
type termEntry struct {
	Term   string `json:"t"`
	DocIDs []int  `json:"d"`
}

// docEntry is the serialised form of one document record.
type docEntry struct {
	ID  int      `json:"id"`
	Doc Document `json:"doc"`
}

// Save writes the token→postings and id→record mappings as a pair of
// versioned artifacts in the store's data directory, creating it if needed.
// Each artifact is written to a .tmp file and renamed on success.
func (s *Store) Save() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "creating index directory %s: %v", s.dataDir, err)
	}
	if err := writeArtifact(filepath.Join(s.dataDir, postingsFileName), s.termEntries()); err != nil {
		return err
	}
	if err := writeArtifact(filepath.Join(s.dataDir, docmapFileName), s.docEntries()); err != nil {
		return err
	}
	return nil
}

// Load replaces the store's mappings with the persisted pair. A missing
// artifact yields ErrIndexNotBuilt; any other failure yields ErrPersistence.
func (s *Store) Load() error {
	var terms []termEntry
	if err := readArtifact(filepath.Join(s.dataDir, postingsFileName), &terms); err != nil {
		return err
	}
	var docs []docEntry
	if err := readArtifact(filepath.Join(s.dataDir, docmapFileName), &docs); err != nil {
		return err
	}

	s.postings = make(map[string]map[int]struct{}, len(terms))
	for _, entry := range terms {
		set := make(map[int]struct{}, len(entry.DocIDs))
		for _, id := range entry.DocIDs {
			set[id] = struct{}{}
		}
		s.postings[entry.Term] = set
	}
	s.docs = make(map[int]Document, len(docs))
	for _, entry := range docs {
		s.docs[entry.ID] = entry.Doc
	}
	return nil
}

// termEntries snapshots the postings map as sorted slices, terms ascending
// and doc IDs ascending within each term.
func (s *Store) termEntries() []termEntry {
	entries := make([]termEntry, 0, len(s.postings))
	for term, set := range s.postings {
		ids := make([]int, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		entries = append(entries, termEntry{Term: term, DocIDs: ids})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

func (s *Store) docEntries() []docEntry {
	entries := make([]docEntry, 0, len(s.docs))
	for id, doc := range s.docs {
		entries = append(entries, docEntry{ID: id, Doc: doc})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// writeArtifact serialises payload as a fixed header (magic, version, body
// length, CRC32 of the body) followed by the JSON body.
func writeArtifact(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "marshaling %s: %v", filepath.Base(path), err)
	}
	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(header[8:16], uint64(len(body)))
	binary.LittleEndian.PutUint32(header[16:20], crc32.ChecksumIEEE(body))

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "creating %s: %v", tmpPath, err)
	}
	defer f.Close()
	if _, err := f.Write(header); err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "writing header to %s: %v", tmpPath, err)
	}
	if _, err := f.Write(body); err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "writing body to %s: %v", tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "syncing %s: %v", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "closing %s: %v", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "renaming %s: %v", tmpPath, err)
	}
	return nil
}

// readArtifact reads and validates one artifact, unmarshaling its body
// into out.
func readArtifact(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.Newf(apperrors.ErrIndexNotBuilt, "artifact %s does not exist", path)
		}
		return apperrors.Newf(apperrors.ErrPersistence, "reading %s: %v", path, err)
	}
	if len(data) < HeaderSize {
		return apperrors.Newf(apperrors.ErrPersistence, "artifact %s truncated: %d bytes", path, len(data))
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicBytes {
		return apperrors.Newf(apperrors.ErrPersistence, "artifact %s: bad magic bytes %x", path, magic)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != FormatVersion {
		return apperrors.Newf(apperrors.ErrPersistence, "artifact %s: unsupported format version %d", path, version)
	}
	bodyLen := binary.LittleEndian.Uint64(data[8:16])
	if uint64(len(data)-HeaderSize) < bodyLen {
		return apperrors.Newf(apperrors.ErrPersistence, "artifact %s truncated: want %d body bytes, have %d", path, bodyLen, len(data)-HeaderSize)
	}
	body := data[HeaderSize : HeaderSize+int(bodyLen)]
	checksum := binary.LittleEndian.Uint32(data[16:20])
	if crc32.ChecksumIEEE(body) != checksum {
		return apperrors.Newf(apperrors.ErrPersistence, "artifact %s: checksum mismatch", path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Newf(apperrors.ErrPersistence, "parsing %s: %v", path, err)
	}
	return nil
}

// ArtifactPaths returns the locations of the two persisted artifacts for a
// given data directory.
func ArtifactPaths(dataDir string) (postings, docmap string) {
	return filepath.Join(dataDir, postingsFileName), filepath.Join(dataDir, docmapFileName)
}
