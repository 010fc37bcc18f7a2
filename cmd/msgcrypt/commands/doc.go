// Package commands implements the msgcrypt command line tool.
//
//	msgcrypt keygen
//	msgcrypt derive <private-key-hex>
//	msgcrypt encrypt --key <hex> --to-key <hex> --text "hi"
//	msgcrypt decrypt --key <hex> --from-key <hex> --nonce <hex> --box <hex>
//	msgcrypt send <identity> --key <hex> --text "hi"
//	msgcrypt send-simple --to <identity> "hi"
//	msgcrypt lookup pubkey <identity>
//	msgcrypt lookup id --phone 41791234567
//	msgcrypt credits
//	msgcrypt blob upload <file>
//	msgcrypt blob download <id> --out <file>
//
// Gateway settings come from the MSGCRYPT_* environment variables read by
// package factory and may be overridden with flags. The private key may be
// given with --key or MSGCRYPT_PRIVATE_KEY.
package commands
