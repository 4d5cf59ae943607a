package native

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/temirov/submodule-commitmsg/internal/gitrepo"
)

const (
	candidatePrefixByteCountConstant    = 3
	shortIDErrorTemplateConstant        = "short id for %s: %w"
	iterateObjectsErrorTemplateConstant = "%w: %v"
)

type prefixIndexedStorer interface {
	HashesWithPrefix(prefix []byte) ([]plumbing.Hash, error)
}

// ShortID returns the shortest prefix, at least seven hex digits long, that
// identifies the commit unambiguously among all objects in the repository.
func (repository *Repository) ShortID(executionContext context.Context, commitID string) (string, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}
	hash, parseError := parseCommitID(commitID)
	if parseError != nil {
		return "", fmt.Errorf(shortIDErrorTemplateConstant, commitID, parseError)
	}
	if _, lookupError := repository.repository.CommitObject(hash); lookupError != nil {
		return "", fmt.Errorf(shortIDErrorTemplateConstant, commitID, translateObjectError(lookupError))
	}

	candidates, candidateError := repository.hashesWithPrefix(hash[:candidatePrefixByteCountConstant])
	if candidateError != nil {
		return "", fmt.Errorf(shortIDErrorTemplateConstant, commitID, candidateError)
	}

	fullID := hash.String()
	return fullID[:abbreviationLength(hash, candidates)], nil
}

func (repository *Repository) hashesWithPrefix(prefix []byte) ([]plumbing.Hash, error) {
	objectStorer := repository.repository.Storer
	if indexedStorer, indexed := objectStorer.(prefixIndexedStorer); indexed {
		hashes, lookupError := indexedStorer.HashesWithPrefix(prefix)
		if lookupError != nil {
			return nil, fmt.Errorf(iterateObjectsErrorTemplateConstant, gitrepo.ErrShortIDUnavailable, lookupError)
		}
		return hashes, nil
	}

	objectIterator, iteratorError := objectStorer.IterEncodedObjects(plumbing.AnyObject)
	if iteratorError != nil {
		return nil, fmt.Errorf(iterateObjectsErrorTemplateConstant, gitrepo.ErrShortIDUnavailable, iteratorError)
	}
	var hashes []plumbing.Hash
	iterationError := objectIterator.ForEach(func(encodedObject plumbing.EncodedObject) error {
		objectHash := encodedObject.Hash()
		if sharesPrefix(objectHash, prefix) {
			hashes = append(hashes, objectHash)
		}
		return nil
	})
	if iterationError != nil && !errors.Is(iterationError, storer.ErrStop) {
		return nil, fmt.Errorf(iterateObjectsErrorTemplateConstant, gitrepo.ErrShortIDUnavailable, iterationError)
	}
	return hashes, nil
}

func sharesPrefix(hash plumbing.Hash, prefix []byte) bool {
	for index, prefixByte := range prefix {
		if hash[index] != prefixByte {
			return false
		}
	}
	return true
}

// abbreviationLength returns one more hex digit than the longest prefix the
// target shares with any other candidate, never fewer than the git default.
func abbreviationLength(target plumbing.Hash, candidates []plumbing.Hash) int {
	length := gitrepo.MinimumShortIDLengthConstant
	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		required := commonHexPrefixLength(target, candidate) + 1
		if required > length {
			length = required
		}
	}
	maximumLength := len(target) * 2
	if length > maximumLength {
		length = maximumLength
	}
	return length
}

func commonHexPrefixLength(left, right plumbing.Hash) int {
	for index := range left {
		if left[index] == right[index] {
			continue
		}
		if left[index]>>4 == right[index]>>4 {
			return index*2 + 1
		}
		return index * 2
	}
	return len(left) * 2
}
