// fedcore is a server framework for implementing an ActivityPub application.
// Copyright (C) 2019 Cory Slep
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ap

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-fed/httpsig"
	"github.com/hearthgate/fedcore/framework/conn"
	"github.com/hearthgate/fedcore/services"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

// getPublicKeyFromResponse extracts the PEM-encoded public key matching
// keyId out of a dereferenced actor (or standalone publicKey) document.
func getPublicKeyFromResponse(actor *streams.Value, keyId *url.URL) (crypto.PublicKey, error) {
	pem, err := publicKeyPem(actor, keyId)
	if err != nil {
		return nil, err
	}
	return parsePublicKeyPem(pem)
}

// publicKeyPem finds the publicKeyPem belonging to keyId among a value's
// "publicKey" property, which may be a single embedded object or an array
// of them.
func publicKeyPem(actor *streams.Value, keyId *url.URL) (string, error) {
	for _, pk := range actor.Values("publicKey") {
		pkID, err := pk.ID()
		if err != nil || pkID.String() != keyId.String() {
			continue
		}
		pemStr, ok := pk.StringProperty("publicKeyPem")
		if !ok {
			return "", fmt.Errorf("ap: publicKey %s has no publicKeyPem", keyId)
		}
		return pemStr, nil
	}
	return "", fmt.Errorf("ap: cannot find publicKey with id: %s", keyId)
}

func parsePublicKeyPem(pemStr string) (crypto.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("ap: could not decode publicKeyPem to a PUBLIC KEY pem block")
	}
	return x509.ParsePKIXPublicKey(block.Bytes)
}

// verifyHttpSignatures authenticates an incoming federated request by
// dereferencing the claimed signer's public key (using our own credentials
// for the target inbox's owner) and verifying the request's HTTP Signature
// against it.
func verifyHttpSignatures(c context.Context, r *http.Request, pk *services.PrivateKeys, tc *conn.Controller) (authenticated bool, err error) {
	v, err := httpsig.NewVerifier(r)
	if err != nil {
		return false, err
	}
	kIdIRI, err := url.Parse(v.KeyId())
	if err != nil {
		return false, err
	}

	uc := util.Context{Context: c}
	userUUID, err := uc.UserPathUUID()
	if err != nil {
		return false, err
	}
	privKey, pubKeyID, err := pk.GetUserHTTPSignatureKey(uc, string(userUUID))
	if err != nil {
		return false, err
	}

	tp, err := tc.Get(privKey, pubKeyID.String())
	if err != nil {
		return false, err
	}
	signer, err := tp.Dereference(c, kIdIRI)
	if err != nil {
		return false, err
	}
	pKey, err := getPublicKeyFromResponse(signer, kIdIRI)
	if err != nil {
		return false, err
	}

	algo := tc.GetFirstAlgorithm()
	return v.Verify(pKey, algo) == nil, nil
}
