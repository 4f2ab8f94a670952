// Package persistence implements the flat-file format for road-network
// graphs: four ordered, length-prefixed sections (profiles, vertices,
// edges, tags) over a seekable byte stream.
//
// Section layout, all integers little-endian:
//
//	[profilesSize u32][profiles]
//	[verticesSize u64][vertices]
//	[edgesSize   u64][edges]
//	[tagsSize    u64][tags]
//
// Block sizes are not known before writing, so each size field is written
// in two passes: reserve, write the block, seek back, backpatch the true
// size, seek past the block. Reading is pure sequential io.Reader; the
// declared sizes are verified against the bytes actually consumed.
package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/sanonone/roadgraph/pkg/core"
	"github.com/sanonone/roadgraph/pkg/core/profile"
	"github.com/sanonone/roadgraph/pkg/core/tags"
	"github.com/sanonone/roadgraph/pkg/metrics"
)

// DefaultBlockSize is the number of vertex slots per batch in the
// vertices section. Tunable on the Writer; readers derive batch
// boundaries from the per-batch length prefixes and never need to know
// the writer's choice.
const DefaultBlockSize = 10

var (
	// ErrTruncatedStream indicates the stream ended short of a declared
	// section or record size.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrNonEmptyIndex indicates an attempt to deserialize tag
	// collections into an index that already holds entries. Stored tag
	// references are reconstructed purely from append order, so loading
	// into a pre-populated index would silently rebind them.
	ErrNonEmptyIndex = errors.New("tag index not empty")
)

// section names for metrics labels.
const (
	sectionProfiles = "profiles"
	sectionVertices = "vertices"
	sectionEdges    = "edges"
	sectionTags     = "tags"
)

// Writer serializes a graph snapshot to a seekable stream.
type Writer struct {
	// BlockSize is the number of vertex slots per batch; values <= 0
	// fall back to DefaultBlockSize.
	BlockSize int

	// Format lays out the edges section interior. Nil means
	// TaggedEdgeFormat.
	Format EdgeFormat
}

// NewWriter returns a Writer with default block size and edge format.
func NewWriter() *Writer {
	return &Writer{BlockSize: DefaultBlockSize, Format: TaggedEdgeFormat{}}
}

// Write serializes g, including its tag collection index, to dst.
// The stream must be exclusively owned by this call for its entire
// duration. On error the stream content past the starting position is
// undefined.
func (w *Writer) Write(dst io.WriteSeeker, g *core.Graph) error {
	blockSize := w.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	format := w.Format
	if format == nil {
		format = TaggedEdgeFormat{}
	}

	if err := writeSection(dst, 4, sectionProfiles, func(cw io.Writer) error {
		return writeProfiles(cw, g)
	}); err != nil {
		return err
	}
	if err := writeSection(dst, 8, sectionVertices, func(cw io.Writer) error {
		return writeVertices(cw, g, blockSize)
	}); err != nil {
		return err
	}
	if err := writeSection(dst, 8, sectionEdges, func(cw io.Writer) error {
		return format.Serialize(cw, g)
	}); err != nil {
		return err
	}
	if err := writeSection(dst, 8, sectionTags, func(cw io.Writer) error {
		return writeTags(cw, g.Tags())
	}); err != nil {
		return err
	}

	metrics.GraphsSaved.Inc()
	return nil
}

// writeSection reserves sizeWidth bytes, runs fn, then seeks back and
// backpatches the measured block size.
func writeSection(dst io.WriteSeeker, sizeWidth int, name string, fn func(io.Writer) error) error {
	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("section %s: %w", name, err)
	}
	placeholder := make([]byte, sizeWidth)
	if _, err := dst.Write(placeholder); err != nil {
		return fmt.Errorf("section %s: reserve size field: %w", name, err)
	}

	cw := &countingWriter{w: dst}
	if err := fn(cw); err != nil {
		return fmt.Errorf("section %s: %w", name, err)
	}

	size := make([]byte, sizeWidth)
	if sizeWidth == 4 {
		if cw.n > math.MaxUint32 {
			return fmt.Errorf("section %s: block of %d bytes exceeds u32 size field", name, cw.n)
		}
		binary.LittleEndian.PutUint32(size, uint32(cw.n))
	} else {
		binary.LittleEndian.PutUint64(size, uint64(cw.n))
	}
	if _, err := dst.Seek(start, io.SeekStart); err != nil {
		return fmt.Errorf("section %s: seek to size field: %w", name, err)
	}
	if _, err := dst.Write(size); err != nil {
		return fmt.Errorf("section %s: backpatch size: %w", name, err)
	}
	if _, err := dst.Seek(start+int64(sizeWidth)+cw.n, io.SeekStart); err != nil {
		return fmt.Errorf("section %s: seek past block: %w", name, err)
	}

	metrics.SectionsWritten.WithLabelValues(name).Inc()
	metrics.BytesWritten.Add(float64(int64(sizeWidth) + cw.n))
	return nil
}

func writeProfiles(w io.Writer, g *core.Graph) error {
	profiles := g.SupportedProfiles()
	var head [4]byte
	binary.LittleEndian.PutUint32(head[:], uint32(len(profiles)))
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	for _, p := range profiles {
		if len(p.Name) > math.MaxUint16 {
			return fmt.Errorf("profile name of %d bytes exceeds u16 length field", len(p.Name))
		}
		var plen [2]byte
		binary.LittleEndian.PutUint16(plen[:], uint16(len(p.Name)))
		if _, err := w.Write(plen[:]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, p.Name); err != nil {
			return err
		}
	}
	return nil
}

// writeVertices emits length-prefixed batches of blockSize nullable
// slots. The batch loop always runs at least once and continues until
// the running counter exceeds the vertex count, so a count that is an
// exact multiple of the block size is followed by one fully sparse
// batch. Readers rely on the section size, not the batch count, so the
// trailing batch is harmless but must be present for byte-exact
// compatibility.
func writeVertices(w io.Writer, g *core.Graph, blockSize int) error {
	count := g.VertexCount()
	var batch bytes.Buffer
	var rec [12]byte

	for base := uint64(0); ; base += uint64(blockSize) {
		batch.Reset()
		for slot := 0; slot < blockSize; slot++ {
			id := base + uint64(slot)
			if id >= count {
				batch.WriteByte(0)
				continue
			}
			v, _ := g.Vertex(id)
			batch.WriteByte(1)
			// stored id wraps past 1<<32 vertices; readers reassign
			// ids from insertion order and never read this field
			binary.LittleEndian.PutUint32(rec[0:4], uint32(id))
			binary.LittleEndian.PutUint32(rec[4:8], math.Float32bits(v.Lat))
			binary.LittleEndian.PutUint32(rec[8:12], math.Float32bits(v.Lon))
			batch.Write(rec[:])
		}

		var blen [4]byte
		binary.LittleEndian.PutUint32(blen[:], uint32(batch.Len()))
		if _, err := w.Write(blen[:]); err != nil {
			return err
		}
		if _, err := w.Write(batch.Bytes()); err != nil {
			return err
		}

		if base+uint64(blockSize) > count {
			return nil
		}
	}
}

func writeTags(w io.Writer, idx *tags.Index) error {
	var head [4]byte
	binary.LittleEndian.PutUint32(head[:], idx.Max())
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	for id := uint32(0); id < idx.Max(); id++ {
		c, err := idx.Get(id)
		if err != nil {
			return err
		}
		payload := c.Encode()
		var plen [4]byte
		binary.LittleEndian.PutUint32(plen[:], uint32(len(payload)))
		if _, err := w.Write(plen[:]); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// Reader deserializes a graph snapshot from a stream.
type Reader struct {
	// Format parses the edges section interior. Nil means
	// TaggedEdgeFormat.
	Format EdgeFormat

	// Registry resolves stored profile names. When nil, every stored
	// name is accepted verbatim as a profile.
	Registry *profile.Registry

	// SkipUnknownProfiles tolerates names the registry cannot resolve:
	// they are logged and dropped instead of aborting the load. Off by
	// default, so missing profiles surface as errors.
	SkipUnknownProfiles bool

	// Logger receives warnings for skipped profiles. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// NewReader returns a Reader resolving profile names against reg.
func NewReader(reg *profile.Registry) *Reader {
	return &Reader{Format: TaggedEdgeFormat{}, Registry: reg}
}

// Read deserializes a graph snapshot from src into g and its tag index.
// The target tag index must be empty; the target graph is mutated
// incrementally as sections are consumed, so a mid-stream failure leaves
// it partially populated with no rollback.
func (r *Reader) Read(src io.Reader, g *core.Graph) error {
	if g.Tags().Max() != 0 {
		return ErrNonEmptyIndex
	}
	format := r.Format
	if format == nil {
		format = TaggedEdgeFormat{}
	}

	if err := r.readProfiles(src, g); err != nil {
		return err
	}
	if err := readSectionBody(src, sectionVertices, func(sr io.Reader, size uint64) error {
		return readVertices(sr, size, g)
	}); err != nil {
		return err
	}
	if err := readSectionBody(src, sectionEdges, func(sr io.Reader, size uint64) error {
		return format.Deserialize(sr, g)
	}); err != nil {
		return err
	}
	if err := readSectionBody(src, sectionTags, func(sr io.Reader, size uint64) error {
		return readTags(sr, g.Tags())
	}); err != nil {
		return err
	}

	metrics.GraphsLoaded.Inc()
	return nil
}

func (r *Reader) readProfiles(src io.Reader, g *core.Graph) error {
	var sizeBuf [4]byte
	if err := readFull(src, sizeBuf[:]); err != nil {
		return fmt.Errorf("section profiles: read size: %w", err)
	}
	size := binary.LittleEndian.Uint32(sizeBuf[:])
	sr := &countingReader{r: io.LimitReader(src, int64(size))}

	var head [4]byte
	if err := readFull(sr, head[:]); err != nil {
		return fmt.Errorf("section profiles: %w", err)
	}
	count := binary.LittleEndian.Uint32(head[:])
	for i := uint32(0); i < count; i++ {
		var plen [2]byte
		if err := readFull(sr, plen[:]); err != nil {
			return fmt.Errorf("section profiles: %w", err)
		}
		name := make([]byte, binary.LittleEndian.Uint16(plen[:]))
		if err := readFull(sr, name); err != nil {
			return fmt.Errorf("section profiles: %w", err)
		}

		if r.Registry == nil {
			g.AddSupportedProfile(profile.Profile{Name: string(name)})
			continue
		}
		p, err := r.Registry.Resolve(string(name))
		if err != nil {
			if r.SkipUnknownProfiles {
				r.logger().Warn("skipping unresolvable vehicle profile", "name", string(name))
				continue
			}
			return fmt.Errorf("section profiles: %w", err)
		}
		g.AddSupportedProfile(p)
	}
	if uint64(sr.n) != uint64(size) {
		return fmt.Errorf("section profiles: consumed %d of %d declared bytes", sr.n, size)
	}

	metrics.SectionsRead.WithLabelValues(sectionProfiles).Inc()
	metrics.BytesRead.Add(float64(4 + sr.n))
	return nil
}

// readSectionBody reads a u64 size prefix, hands a size-limited reader
// to fn, and verifies fn consumed exactly the declared byte count.
func readSectionBody(src io.Reader, name string, fn func(sr io.Reader, size uint64) error) error {
	var sizeBuf [8]byte
	if err := readFull(src, sizeBuf[:]); err != nil {
		return fmt.Errorf("section %s: read size: %w", name, err)
	}
	size := binary.LittleEndian.Uint64(sizeBuf[:])
	sr := &countingReader{r: io.LimitReader(src, int64(size))}

	if err := fn(sr, size); err != nil {
		return fmt.Errorf("section %s: %w", name, err)
	}
	if uint64(sr.n) != size {
		return fmt.Errorf("section %s: consumed %d of %d declared bytes", name, sr.n, size)
	}

	metrics.SectionsRead.WithLabelValues(name).Inc()
	metrics.BytesRead.Add(float64(8 + sr.n))
	return nil
}

// readVertices consumes length-prefixed batches until the declared
// section size is exhausted, appending every present slot in order. The
// stored per-record id is ignored; ids are reassigned by insertion
// order.
func readVertices(sr io.Reader, size uint64, g *core.Graph) error {
	var consumed uint64
	for consumed < size {
		var blen [4]byte
		if err := readFull(sr, blen[:]); err != nil {
			return err
		}
		payload := make([]byte, binary.LittleEndian.Uint32(blen[:]))
		if err := readFull(sr, payload); err != nil {
			return err
		}
		consumed += 4 + uint64(len(payload))

		for off := 0; off < len(payload); {
			present := payload[off]
			off++
			if present == 0 {
				continue
			}
			if off+12 > len(payload) {
				return fmt.Errorf("vertex record cut short at batch offset %d: %w", off, ErrTruncatedStream)
			}
			// skip the stored id word at payload[off:off+4]
			lat := math.Float32frombits(binary.LittleEndian.Uint32(payload[off+4:]))
			lon := math.Float32frombits(binary.LittleEndian.Uint32(payload[off+8:]))
			g.AddVertex(lat, lon)
			off += 12
		}
	}
	return nil
}

func readTags(sr io.Reader, idx *tags.Index) error {
	if idx.Max() != 0 {
		return ErrNonEmptyIndex
	}
	var head [4]byte
	if err := readFull(sr, head[:]); err != nil {
		return err
	}
	count := binary.LittleEndian.Uint32(head[:])
	for i := uint32(0); i < count; i++ {
		var plen [4]byte
		if err := readFull(sr, plen[:]); err != nil {
			return err
		}
		payload := make([]byte, binary.LittleEndian.Uint32(plen[:]))
		if err := readFull(sr, payload); err != nil {
			return err
		}
		c, err := tags.Decode(payload)
		if err != nil {
			return fmt.Errorf("tag collection %d: %w", i, err)
		}
		idx.Add(c)
	}
	return nil
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// readFull fills buf or fails with ErrTruncatedStream. Any EOF here is a
// short read against a declared size, never a clean end of stream.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrTruncatedStream
		}
		return err
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
