// Command da-bench generates key/value fixtures, builds them into a
// double-array trie file and benchmarks lookups against it, mirroring
// the teacher's own trie_bench tool's -gen/-mkdb/-scandb subcommands
// adapted to the double-array builder and storage.Mmap.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iotaledger/da.go/doublearray"
	"github.com/iotaledger/da.go/doublearray/storage"
	"golang.org/x/crypto/blake2b"
)

const usage = "generate random key/value pairs.         USAGE: da-bench -gen <size> <name>\n" +
	"generate random keys hashed with blake2b. USAGE: da-bench -genhash <size> <name>\n" +
	"build a trie file from a fixture.         USAGE: da-bench -build <name>\n" +
	"benchmark lookups against a built file.    USAGE: da-bench -bench <name>\n"

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}
	switch os.Args[1] {
	case "-gen":
		requireArgs(3)
		size, err := strconv.Atoi(os.Args[2])
		must(err)
		must(generate(size, os.Args[3], false))
	case "-genhash":
		requireArgs(3)
		size, err := strconv.Atoi(os.Args[2])
		must(err)
		must(generate(size, os.Args[3], true))
	case "-build":
		requireArgs(2)
		must(build(os.Args[2]))
	case "-bench":
		requireArgs(2)
		must(bench(os.Args[2]))
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
}

func requireArgs(n int) {
	if len(os.Args) != n+1 {
		fmt.Print(usage)
		os.Exit(1)
	}
}

func must(err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

const (
	maxKeyLen   = 24
	maxValueLen = 32
)

// generate writes size random (key, value) pairs, one per line, as
// hex(key)\thex(value), to name+".csv". With hashKV, each key is first
// hashed through blake2b-256 so downstream builds exercise fixed-length,
// collision-free keys at scale, the same role blake2b played in the
// teacher's -genhash mode.
func generate(size int, name string, hashKV bool) error {
	f, err := os.Create(name + ".csv")
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	rng := rand.New(rand.NewSource(42))
	seen := make(map[string]bool, size)
	for len(seen) < size {
		key := randBytes(rng, 1+rng.Intn(maxKeyLen))
		if hashKV {
			sum := blake2b.Sum256(key)
			key = sum[:]
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		value := randBytes(rng, 1+rng.Intn(maxValueLen))
		if _, err := fmt.Fprintf(w, "%x\t%x\n", key, value); err != nil {
			return err
		}
	}
	return nil
}

// randBytes avoids storage.KeyTerminator and storage.VacantCheck so
// generated fixtures are always valid trie keys on their own, without
// needing an escaping codec in front of them.
func randBytes(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		v := byte(rng.Intn(254))
		b[i] = v
	}
	return b
}

// fixedBytesSerializer packs a value up to maxValueLen bytes into a
// fixed-width record: a 2-byte big-endian length prefix followed by
// maxValueLen bytes of payload, zero-padded. storage.Mmap requires a
// fixed record size, unlike the length-prefixed variable records
// storage.BytesSerializer produces, so the benchmark's build and bench
// subcommands share this codec instead.
func fixedBytesSerializer() storage.Serializer {
	const size = 2 + maxValueLen
	return storage.Serializer{
		FixedSize: size,
		Serialize: func(value interface{}) ([]byte, error) {
			v, ok := value.([]byte)
			if !ok || len(v) > maxValueLen {
				return nil, fmt.Errorf("value must be a []byte of at most %d bytes", maxValueLen)
			}
			record := make([]byte, size)
			record[0] = byte(len(v) >> 8)
			record[1] = byte(len(v))
			copy(record[2:], v)
			return record, nil
		},
	}
}

func fixedBytesDeserializer() storage.Deserializer {
	return storage.Deserializer{
		Deserialize: func(record []byte) (interface{}, error) {
			if len(record) < 2 {
				return nil, fmt.Errorf("truncated fixed-size record")
			}
			n := int(record[0])<<8 | int(record[1])
			if 2+n > len(record) {
				return nil, fmt.Errorf("declared length %d exceeds record size %d", n, len(record)-2)
			}
			return append([]byte(nil), record[2:2+n]...), nil
		},
	}
}

// build reads name+".csv", sorts it by key, builds a trie with a
// progress observer and writes name+".bin" in the spec.md §6.1 format.
func build(name string) error {
	entries, err := readFixture(name + ".csv")
	if err != nil {
		return err
	}

	start := time.Now()
	count := 0
	cfg := doublearray.Config{
		DensityFactor: doublearray.DefaultDensityFactor,
		BuildingObserverSet: doublearray.BuildingObserverSet{
			OnAdding: func([]byte, int32) {
				count++
				if count%10000 == 0 {
					fmt.Printf("added %d/%d keys\n", count, len(entries))
				}
			},
			OnDone: func() {
				fmt.Printf("build done: %d keys in %s\n", count, time.Since(start))
			},
		},
	}

	mem, err := doublearray.Build(entries, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("base/check cells: %d, filling rate: %.4f\n", mem.BaseCheckSize(), mem.FillingRate())

	out, err := os.Create(name + ".bin")
	if err != nil {
		return err
	}
	defer out.Close()
	return doublearray.Serialize(out, doublearray.New(mem), fixedBytesSerializer())
}

// bench opens name+".bin" as a read-only memory-mapped trie and reports
// lookup throughput against the keys recorded in name+".csv".
func bench(name string) error {
	entries, err := readFixture(name + ".csv")
	if err != nil {
		return err
	}

	tr, err := doublearray.OpenMmap(name+".bin", 0, fixedBytesDeserializer(), storage.DefaultValueCacheCapacity)
	if err != nil {
		return err
	}
	defer tr.Storage().(*storage.Mmap).Close()

	start := time.Now()
	hits := 0
	for _, e := range entries {
		if _, ok := tr.Find(e.Key); ok {
			hits++
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("%d lookups, %d hits, %s total, %s/lookup\n",
		len(entries), hits, elapsed, elapsed/time.Duration(max(1, len(entries))))
	return nil
}

// readFixture loads a hex-encoded key\tvalue CSV into sorted Entry
// values ready for doublearray.Build.
func readFixture(path string) ([]doublearray.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []doublearray.Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.SplitN(scanner.Text(), "\t", 2)
		if len(fields) != 2 {
			continue
		}
		key, err := hex.DecodeString(fields[0])
		if err != nil {
			return nil, err
		}
		value, err := hex.DecodeString(fields[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, doublearray.Entry{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return string(entries[i].Key) < string(entries[j].Key)
	})
	return entries, nil
}
