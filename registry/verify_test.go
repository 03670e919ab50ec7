package registry

import (
	"time"

	"github.com/go-certichain/certichain/storage/model"
)

func (s *registrySuite) verify(id model.CertificateID, document string) Verdict {
	var doc []byte
	if document != "" {
		doc = []byte(document)
	}
	verdict, err := s.engine.Verifier.Verify(s.ctx, id, doc)
	s.Require().NoError(err)
	return verdict
}

func (s *registrySuite) issueExpiring(document string, ttl time.Duration) *model.Certificate {
	exp := s.clock.Now().Add(ttl)
	cert, err := s.engine.Registry.Issue(
		s.ctx, IssueRequest{
			Issuer:    "registrar",
			Template:  "degree",
			Fields:    degreeFields(),
			Document:  []byte(document),
			ExpiresAt: &exp,
		},
	)
	s.Require().NoError(err)
	return cert
}

func (s *registrySuite) TestVerifyValid() {
	s.authorizedIssuer("registrar")
	cert := s.issue("registrar", "original")

	verdict := s.verify(cert.ID, "")
	s.Equal(model.VerificationValid, verdict.Status)
	s.Equal(cert.ID, verdict.CertificateID)
	s.Require().NotNil(verdict.Certificate)
	s.Empty(verdict.ContentHash)

	verdict = s.verify(cert.ID, "original")
	s.Equal(model.VerificationValid, verdict.Status)
	s.Equal(cert.ContentHash, verdict.ContentHash)
}

func (s *registrySuite) TestVerifyNotFound() {
	verdict := s.verify(7, "anything")
	s.Equal(model.VerificationNotFound, verdict.Status)
	s.Nil(verdict.Certificate)
}

func (s *registrySuite) TestVerifyHashMismatch() {
	s.authorizedIssuer("registrar")
	cert := s.issue("registrar", "original")
	verdict := s.verify(cert.ID, "tampered")
	s.Equal(model.VerificationHashMismatch, verdict.Status)
	s.NotEqual(cert.ContentHash, verdict.ContentHash)
}

func (s *registrySuite) TestVerifyExpiredLazily() {
	s.authorizedIssuer("registrar")
	cert := s.issueExpiring("original", time.Hour)
	s.Equal(model.VerificationValid, s.verify(cert.ID, "").Status)

	s.clock.Advance(2 * time.Hour)
	s.Equal(model.VerificationExpired, s.verify(cert.ID, "").Status)
	// expiry wins over a hash mismatch
	s.Equal(model.VerificationExpired, s.verify(cert.ID, "tampered").Status)

	got, err := s.engine.Registry.Get(s.ctx, cert.ID)
	s.Require().NoError(err)
	s.Equal(model.StateValid, got.State, "expiry is not a stored state")
}

func (s *registrySuite) TestVerifyRevokedWinsOverExpired() {
	s.authorizedIssuer("registrar")
	cert := s.issueExpiring("original", time.Hour)
	_, err := s.engine.Registry.Revoke(s.ctx, cert.ID, "registrar")
	s.Require().NoError(err)

	s.Equal(model.VerificationRevoked, s.verify(cert.ID, "").Status)
	s.clock.Advance(2 * time.Hour)
	s.Equal(model.VerificationRevoked, s.verify(cert.ID, "").Status)
	s.Equal(model.VerificationRevoked, s.verify(cert.ID, "tampered").Status)
}

func (s *registrySuite) TestVerifyDocument() {
	s.authorizedIssuer("registrar")
	first := s.issue("registrar", "shared")
	second := s.issue("registrar", "shared")
	s.Equal(first.ContentHash, second.ContentHash)

	verdict, err := s.engine.Verifier.VerifyDocument(s.ctx, []byte("shared"))
	s.Require().NoError(err)
	s.Equal(model.VerificationValid, verdict.Status)
	s.Equal(second.ID, verdict.CertificateID)

	_, err = s.engine.Registry.Revoke(s.ctx, second.ID, "registrar")
	s.Require().NoError(err)
	verdict, err = s.engine.Verifier.VerifyDocument(s.ctx, []byte("shared"))
	s.Require().NoError(err)
	s.Equal(model.VerificationValid, verdict.Status)
	s.Equal(first.ID, verdict.CertificateID)

	_, err = s.engine.Registry.Revoke(s.ctx, first.ID, "registrar")
	s.Require().NoError(err)
	verdict, err = s.engine.Verifier.VerifyDocument(s.ctx, []byte("shared"))
	s.Require().NoError(err)
	s.Equal(model.VerificationRevoked, verdict.Status)
	s.Equal(second.ID, verdict.CertificateID)
}

func (s *registrySuite) TestVerifyDocumentUnknown() {
	verdict, err := s.engine.Verifier.VerifyDocument(s.ctx, []byte("never issued"))
	s.Require().NoError(err)
	s.Equal(model.VerificationNotFound, verdict.Status)
	s.NotEmpty(verdict.ContentHash)

	_, err = s.engine.Verifier.VerifyDocument(s.ctx, nil)
	s.Require().ErrorIs(err, ErrEmptyDocument)
}

func (s *registrySuite) TestVerifyDoesNotStoreDocuments() {
	s.authorizedIssuer("registrar")
	cert := s.issue("registrar", "original")
	verdict := s.verify(cert.ID, "tampered")
	_, err := s.engine.Content.Fetch(s.ctx, verdict.ContentHash)
	s.Require().ErrorIs(err, ErrContentNotFound)
}
