package compare

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/storage"
)

// DigestComparator performs a two-stage comparison
// Stage 1: SHA-256 of both encoded files; equal digests mean identical images
// Stage 2: the wrapped comparator when digests differ
//
// Byte-identical files are reported identical without being decoded, so a
// corrupt file present on both sides is not detected.
type DigestComparator struct {
	next       Comparator
	bufferPool *sync.Pool
}

// NewDigestComparator wraps next with an identical-bytes shortcut
func NewDigestComparator(next Comparator, bufferSize int) *DigestComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &DigestComparator{
		next: next,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Compare short-circuits on identical bytes, otherwise delegates
func (c *DigestComparator) Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error) {
	leftInfo, err := left.Stat(ctx, leftPath)
	if err != nil {
		return nil, &DecodeError{Side: SideLeft, Path: leftPath, Err: err}
	}
	rightInfo, err := right.Stat(ctx, rightPath)
	if err != nil {
		return nil, &DecodeError{Side: SideRight, Path: rightPath, Err: err}
	}

	// Different sizes can still decode to the same pixels
	if leftInfo.Size != rightInfo.Size {
		return c.next.Compare(ctx, left, right, leftPath, rightPath)
	}

	var leftHash, rightHash string
	var leftErr, rightErr error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		leftHash, leftErr = c.computeHash(ctx, left, leftPath)
	}()
	go func() {
		defer wg.Done()
		rightHash, rightErr = c.computeHash(ctx, right, rightPath)
	}()
	wg.Wait()

	if leftErr != nil {
		return nil, &DecodeError{Side: SideLeft, Path: leftPath, Err: leftErr}
	}
	if rightErr != nil {
		return nil, &DecodeError{Side: SideRight, Path: rightPath, Err: rightErr}
	}

	if leftHash != rightHash {
		return c.next.Compare(ctx, left, right, leftPath, rightPath)
	}

	return &Comparison{
		LeftPath:      leftPath,
		RightPath:     rightPath,
		Outcome:       models.Outcome{Kind: models.OutcomeIdentical},
		BytesCompared: leftInfo.Size + rightInfo.Size,
	}, nil
}

// computeHash computes SHA-256 of a file using streaming
func (c *DigestComparator) computeHash(ctx context.Context, backend storage.Backend, path string) (string, error) {
	reader, err := backend.Read(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	hasher := sha256.New()

	bufPtr := c.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer c.bufferPool.Put(bufPtr)

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Name returns the comparator name
func (c *DigestComparator) Name() string {
	return "digest+" + c.next.Name()
}
