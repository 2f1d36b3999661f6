package client

import (
	"context"
	"errors"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/rpc"
	"github.com/confidential-assets/ca-core/pkg/wire"
	"github.com/confidential-assets/ca-core/pkg/zk/transfer"
)

// Transfer fetches the sender's state, the recipient's encryption key,
// and the applicable auditor keys, builds a TransferProof, and submits
// confidential_transfer(token, recipient, C_senderNew, C_recipient,
// C_auditors, proof) (§4.8). auditorPubs overrides both a prior
// SetAuditorOverride and the RPC-fetched standing auditor key when
// non-nil; pass nil to use whichever of those applies.
func (c *Client) Transfer(ctx context.Context, account, token, recipient rpc.Address, dk *key.DecryptionKey, amount uint64, auditorPubs []key.EncryptionKey) error {
	const op = "transfer"
	return c.withPairLock(ctx, op, account, token, func(ctx context.Context) error {
		rec, _, err := c.fetchFresh(ctx, op, account, token)
		if err != nil {
			return err
		}
		if err := rec.RequireSpendable(); err != nil {
			return mapBalanceErr(op, "precheck", err)
		}

		recipientKeyBytes, err := c.rpc.GetEncryptionKey(ctx, recipient, token)
		if err != nil {
			return newError(KindRpcError, op, "fetch-recipient", err)
		}
		recipientPub, err := wire.DecodeEncryptionKey(c.g, recipientKeyBytes)
		if err != nil {
			return newError(wireKind(err), op, "decode-recipient", err)
		}

		auditors, err := c.resolveAuditors(ctx, op, token, auditorPubs)
		if err != nil {
			return err
		}

		senderValue, err := rec.Available.Decrypt(c.g, dk.Scalar())
		if err != nil {
			return mapDecryptErr(op, "decrypt-sender", err)
		}

		public := transfer.Public{
			Account:          account,
			Token:            token,
			SenderPub:        rec.EncryptionKey,
			RecipientPub:     recipientPub,
			AuditorPubs:      auditors,
			SenderOldChunked: rec.Available,
			Amount:           amount,
		}
		private := transfer.Private{SenderDecryptionKey: dk, SenderOldValue: senderValue}

		proof, out, err := transfer.NewProof(c.g, public, private, c.rng, c.pl)
		if err != nil {
			if errors.Is(err, transfer.ErrInsufficientBalance) {
				return newError(KindInsufficientBalance, op, "build", err)
			}
			return newError(KindProofFailed, op, "build", err)
		}
		if err := proof.Verify(c.g, public, out); err != nil {
			return newError(KindProofFailed, op, "selfcheck", err)
		}

		senderNewBytes, err := wire.EncodeChunkedCiphertext(out.SenderNew)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-sender", err)
		}
		recipientCtBytes, err := wire.EncodeChunkedCiphertext(out.Recipient)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-recipient", err)
		}
		auditorCtsBytes, err := encodeAuditorCiphertexts(out.Auditors)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-auditors", err)
		}
		envelopeBytes, err := wire.EncodeTransferEnvelope(proof, out, auditors)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-envelope", err)
		}

		_, err = c.submit(ctx, op, "submit", account, token, rpc.Call{
			Function: rpc.FunctionConfidentialTransfer,
			Account:  account,
			Args:     [][]byte{token, recipient, senderNewBytes, recipientCtBytes, auditorCtsBytes, envelopeBytes},
		})
		return err
	})
}

// resolveAuditors picks the auditor key list a Transfer call should use:
// an explicit per-call list, failing that a standing SetAuditorOverride,
// failing that the RPC collaborator's single standing auditor key (or
// none, per §6.3's "Point | none").
func (c *Client) resolveAuditors(ctx context.Context, op string, token rpc.Address, explicit []key.EncryptionKey) ([]key.EncryptionKey, error) {
	if explicit != nil {
		return explicit, nil
	}
	if override, ok := c.auditorOverrideFor(token); ok {
		return override, nil
	}
	raw, err := c.rpc.GetAssetAuditorEncryptionKey(ctx, token)
	if err != nil {
		return nil, newError(KindRpcError, op, "fetch-auditor", err)
	}
	if raw == nil {
		return nil, nil
	}
	pub, err := wire.DecodeEncryptionKey(c.g, raw)
	if err != nil {
		return nil, newError(wireKind(err), op, "decode-auditor", err)
	}
	return []key.EncryptionKey{pub}, nil
}

// encodeAuditorCiphertexts concatenates each auditor's fixed-512-byte
// ChunkedCiphertext encoding behind a 1-byte count, the same framing
// wire.EncodeTransferEnvelope uses internally for its auditor ciphertext
// section, so a reader can locate auditor_ciphertexts_bytes (§6.2)
// without parsing the whole envelope.
func encodeAuditorCiphertexts(cts []*elgamal.ChunkedCiphertext) ([]byte, error) {
	if len(cts) > 255 {
		return nil, errors.New("client: too many auditors for a 1-byte count")
	}
	buf := []byte{byte(len(cts))}
	for _, ct := range cts {
		b, err := wire.EncodeChunkedCiphertext(ct)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return buf, nil
}
