package registry

import (
	"strings"
)

func (s *registrySuite) TestRegisterIssuer() {
	issuer, err := s.engine.Directory.Register(s.ctx, "registrar", "Registrar", "University of London")
	s.Require().NoError(err)
	s.False(issuer.Authorized)
	s.Zero(issuer.TotalCertificates)
	s.False(s.engine.Directory.IsAuthorized(s.ctx, "registrar"))

	_, err = s.engine.Directory.Register(s.ctx, "registrar", "Again", "")
	s.Require().ErrorIs(err, ErrDuplicateIssuer)
}

func (s *registrySuite) TestRegisterInvalidIdentity() {
	for _, identity := range []string{"", " padded", "padded ", strings.Repeat("x", maxIdentityLength+1)} {
		_, err := s.engine.Directory.Register(s.ctx, identity, "n", "o")
		s.Require().ErrorIs(err, ErrInvalidIdentity, identity)
	}
}

func (s *registrySuite) TestRegisterIdentityEscapedTooLong() {
	// 128 bytes, but escaped to 384
	identity := strings.Repeat("é", 64)
	s.Require().Len(identity, maxIdentityLength)
	_, err := s.engine.Directory.Register(s.ctx, identity, "n", "o")
	s.Require().ErrorIs(err, ErrInvalidIdentity)

	// the longest unescaped identity still fits
	_, err = s.engine.Directory.Register(s.ctx, strings.Repeat("x", maxIdentityLength), "n", "o")
	s.Require().NoError(err)
	_, err = s.engine.Directory.Register(s.ctx, strings.Repeat("é", 30), "n", "o")
	s.Require().NoError(err)
}

func (s *registrySuite) TestAuthorizeIdempotent() {
	_, err := s.engine.Directory.Register(s.ctx, "registrar", "Registrar", "")
	s.Require().NoError(err)
	s.Require().NoError(s.engine.Directory.Authorize(s.ctx, "registrar"))
	s.Require().NoError(s.engine.Directory.Authorize(s.ctx, "registrar"))
	s.True(s.engine.Directory.IsAuthorized(s.ctx, "registrar"))

	s.Require().NoError(s.engine.Directory.Deauthorize(s.ctx, "registrar"))
	s.Require().NoError(s.engine.Directory.Deauthorize(s.ctx, "registrar"))
	s.False(s.engine.Directory.IsAuthorized(s.ctx, "registrar"))
}

func (s *registrySuite) TestAuthorizeUnknown() {
	s.Require().ErrorIs(s.engine.Directory.Authorize(s.ctx, "ghost"), ErrIssuerNotFound)
	s.Require().ErrorIs(s.engine.Directory.Deauthorize(s.ctx, "ghost"), ErrIssuerNotFound)
	_, err := s.engine.Directory.Get(s.ctx, "ghost")
	s.Require().ErrorIs(err, ErrIssuerNotFound)
	s.False(s.engine.Directory.IsAuthorized(s.ctx, "ghost"))
}

func (s *registrySuite) TestListIssuers() {
	for _, identity := range []string{"zeta", "alpha", "mid/dle"} {
		_, err := s.engine.Directory.Register(s.ctx, identity, identity, "")
		s.Require().NoError(err)
	}
	issuers, err := s.engine.Directory.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(issuers, 3)
	s.Equal("alpha", issuers[0].Identity)
	s.Equal("mid/dle", issuers[1].Identity)
	s.Equal("zeta", issuers[2].Identity)
}
