package group

import (
	"crypto/rand"
	"runtime"

	"github.com/go-errors/errors"

	"github.com/kobigurk/accumulator/big"
	"github.com/kobigurk/accumulator/primality"
)

// GenerateModulus produces an RSA modulus n = p*q from two distinct safe
// primes of bits/2 bits each, generated concurrently on all CPU cores. The
// factors are returned so the caller can keep them as trapdoor material;
// a modulus is only of unknown order to parties that never see them.
func GenerateModulus(bits int) (n, p, q *big.Int, err error) {
	if bits%2 != 0 {
		return nil, nil, nil, errors.New("modulus size must be even")
	}

	stop := make(chan struct{})
	defer close(stop)
	ints, errs := generateSafePrimesConcurrent(bits/2, stop)

	for {
		select {
		case prime := <-ints:
			if p == nil {
				p = prime
				continue
			}
			if prime.Cmp(p) == 0 {
				continue
			}
			q = prime
			n = new(big.Int).Mul(p, q)
			return n, p, q, nil
		case err = <-errs:
			return nil, nil, nil, err
		}
	}
}

// generateSafePrimesConcurrent continuously generates safe primes on all CPU
// cores until the stop channel receives a value or is closed. On an error
// all goroutines stop and the error is delivered on the second channel.
func generateSafePrimesConcurrent(bitsize int, stop chan struct{}) (<-chan *big.Int, <-chan error) {
	count := runtime.GOMAXPROCS(0)
	ints := make(chan *big.Int, count)
	errs := make(chan error, count)

	// Closing a channel is the only way to reach all goroutines at once, but
	// requiring the caller to close() the stop parameter would leak the
	// goroutines if it sends a single value instead. So the caller-facing
	// channel is wrapped in one that is always close()d.
	stopped := make(chan struct{})
	go func() {
		select {
		case <-stop:
			close(stopped)
		case <-stopped: // also closed by a goroutine that hit an error
		}
	}()

	for i := 0; i < count; i++ {
		go func() {
			for {
				x, err := generateSafePrime(bitsize, stopped)
				if err != nil {
					errs <- err
					close(stopped)
					return
				}

				select {
				case <-stopped:
					return
				default:
					ints <- x
				}
			}
		}()
	}

	return ints, errs
}

// generateSafePrime generates a safe prime of the given size, using the fact
// that if q is prime and 2^(2q) = 1 mod (2q+1), then 2q+1 is a safe prime.
// We take a random bigint q; if the above formula holds and q is prime, then
// we return 2q+1.
// (See https://www.ijipbangalore.org/abstracts_2(1)/p5.pdf and
// https://groups.google.com/group/sci.crypt/msg/34c4abf63568a8eb)
//
// Generation is cancelled by sending a value on the stop parameter or
// close()ing it, upon which nil, nil is returned. A nil stop channel means
// the search cannot be cancelled.
func generateSafePrime(bitsize int, stop chan struct{}) (*big.Int, error) {
	var (
		one        = big.NewInt(1)
		two        = big.NewInt(2)
		max        = new(big.Int).Lsh(one, uint(bitsize)) // 2^bitsize, len bitsize+1
		twoq       = new(big.Int)
		twoqone    = new(big.Int)
		twoexptwoq = new(big.Int)
		q          *big.Int
		bitlen     int
		err        error
		i          int
	)

	for {
		// Every 1000 iterations, check if we have been asked to stop
		i++
		if stop != nil && i%1000 == 0 {
			select {
			case <-stop:
				return nil, nil
			default: // just continue with the loop
			}
		}

		if q, err = big.RandInt(rand.Reader, max); err != nil {
			return nil, err
		}

		bitlen = q.BitLen() // q < max = 2^bitsize, so bitlen <= bitsize

		if q.Bit(0) != uint(1) || // q is not odd
			bitlen < bitsize-1 { // q is too small
			continue
		}

		// bitlen now equals either bitsize or bitsize - 1. We want the latter.
		// If bitlen == bitsize we use (q-1)/2 instead of q in the remainder of
		// the algorithm. This way the acceptable bit length range of
		// big.RandInt's output is 2 bits.
		if bitlen == bitsize {
			q.Rsh(q, 1)
			if q.Bit(0) != uint(1) { // ensure again that q is odd
				continue
			}
		}

		twoq.Mul(two, q)
		twoqone.Add(twoq, one)
		twoexptwoq.Exp(two, twoq, twoqone) // 2^(2q) mod (2q+1)

		if twoexptwoq.Cmp(one) == 0 && primality.ProbablyPrime(q) {
			break
		}
	}

	if !ProbablySafePrime(twoqone) {
		return nil, errors.New("safe prime generation returned a non-safe prime")
	}
	return twoqone, nil
}

// ProbablySafePrime reports whether x is a probable safe prime, i.e. whether
// both x and (x-1)/2 pass the primality test.
func ProbablySafePrime(x *big.Int) bool {
	if x.Cmp(big.NewInt(5)) < 0 {
		return false
	}
	if !primality.ProbablyPrime(x) {
		return false
	}
	return primality.ProbablyPrime(new(big.Int).Rsh(x, 1))
}
