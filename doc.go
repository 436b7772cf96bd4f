/*
Package accumulator implements a dynamic universal accumulator in a group of
unknown order, after "Dynamic Accumulators and Application to Efficient
Revocation of Anonymous Credentials", Jan Camenisch and Anna Lysyanskaya,
CRYPTO 2002, DOI https://doi.org/10.1007/3-540-45708-9_5; nonmembership
witnesses after "Universal Accumulators with Efficient Nonmembership Proofs",
Jiangtao Li, Ninghui Li and Rui Xue, ACNS 2007,
DOI https://doi.org/10.1007/978-3-540-72738-5_17; and batch operations after
"Batching Techniques for Accumulators with Applications to IOPs and Stateless
Blockchains", Dan Boneh, Benedikt Bünz and Ben Fisch, CRYPTO 2019,
https://eprint.iacr.org/2018/1188.pdf.

In short, the accumulator works as follows.

- An accumulator is a single group element Nu (the greek letter 𝛎) in which a
set of prime numbers is accumulated: starting from a base element, adding a
prime raises the current value to that prime. Arbitrary byte strings become
accumulatable primes through HashToPrime.

- A party holding a prime e receives a membership witness (u, e). The witness
is valid only if u^e = Nu mod N, i.e. only if e is currently accumulated.
Removing e from the accumulator replaces Nu by its e-th root, which
invalidates that witness in a way that cannot be repaired without the group
trapdoor.

- Whoever knows the factorization of the modulus N can take such roots
directly; everyone else can still remove an element they hold a witness for,
or refresh their own witness after others were added or removed, using only
Bezout coefficients (see ShamirTrick).

- A prime x that is not accumulated has a nonmembership witness, derived from
a Bezout relation between x and the product of the accumulated primes.

Each mutation of the accumulator emits an Event. Events form a hash chain,
and the issuer signs the accumulator state together with the hash of the
latest event, so that clients replaying an Update can verify they were not
handed a forked or truncated history. The primality of accumulated elements
is decided by the Baillie-PSW test in the primality package.
*/
package accumulator
